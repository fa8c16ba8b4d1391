package automation

import (
	"fmt"
	"strings"
)

// Secret names referenced by the task prompt. The runner injects the real
// values through the automation service's sensitive-data channel; they never
// appear in the prompt itself.
const (
	secretEmail    = "TESCO_EMAIL"
	secretPassword = "TESCO_PASSWORD"
)

const taskPromptTemplate = `GOAL: Log into Tesco.ie, add groceries to cart, and provide the cart URL.

IMPORTANT SECURITY NOTE:
- You have access to %[1]s and %[2]s via secret injection
- NEVER print, display, or output these credentials in any form
- Use them only for logging in

EXECUTION STEPS:

1. NAVIGATE & LOGIN:
   - Navigate to https://www.tesco.ie/groceries/
   - Accept cookies if prompted
   - Click "Sign in" or "Login" button
   - Enter the email from %[1]s secret
   - Enter the password from %[2]s secret
   - Submit login form
   - Wait for successful login confirmation

2. SEARCH AND ADD ITEMS:
   For each item in the list below, perform these steps:
   - Use the search bar to search for the item
   - Wait for search results to load
   - If the item is found:
     * Click on the best matching product (typically the first result)
     * Click "Add to trolley" or "Add to basket" button
     * Wait for confirmation that item was added
     * If quantity needs adjustment, set it to 1 (unless specified in item name)
   - If the item is NOT found or out of stock:
     * Note it in your memory and continue to the next item
   - Return to search for the next item

GROCERY LIST:
%[3]s

3. NAVIGATE TO CART:
   - After processing all items, click on the cart/trolley icon
   - Navigate to the cart/basket page
   - Wait for the cart page to fully load

4. FINAL OUTPUT:
   - Extract the current cart page URL
   - Provide output in this exact format:
     CART_URL: [the full URL of the cart page]
   - List any items that could not be added (not found or out of stock)
   - DO NOT proceed to checkout
   - DO NOT place the order

STOP CONDITIONS:
- Stop at the cart page after all items are processed
- Do not proceed beyond viewing the cart
- Do not enter payment or delivery details
`

// FormatGroceryList renders items as a numbered list for the task prompt.
func FormatGroceryList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// BuildTaskPrompt creates the task prompt for the browser agent. The output
// contract (the CART_URL marker line) is what ParseOutcome scans for.
func BuildTaskPrompt(items []string) string {
	return fmt.Sprintf(taskPromptTemplate, secretEmail, secretPassword, FormatGroceryList(items))
}
