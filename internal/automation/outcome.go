package automation

import "strings"

// cartURLMarker is the line prefix the automation agent is instructed to
// emit on success.
const cartURLMarker = "CART_URL:"

// Outcome is the interpretation of an automation run's final text output.
type Outcome struct {
	// CartURL is the extracted cart link; empty when the run failed.
	CartURL string
	// MissingItems holds the output lines flagging items that could not be
	// added to the cart.
	MissingItems []string
	// Raw is the unmodified final output.
	Raw string
}

// Succeeded reports whether the output contained a cart URL.
func (o Outcome) Succeeded() bool {
	return o.CartURL != ""
}

// ParseOutcome scans the automation's final output for the CART_URL marker
// line and for lines flagging unavailable items. Success is signaled solely
// by the marker; any other output shape is a failure.
func ParseOutcome(raw string) Outcome {
	outcome := Outcome{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		switch {
		case strings.HasPrefix(trimmed, cartURLMarker):
			outcome.CartURL = strings.TrimSpace(strings.TrimPrefix(trimmed, cartURLMarker))
		case strings.Contains(lower, "could not be added") || strings.Contains(lower, "unavailable"):
			outcome.MissingItems = append(outcome.MissingItems, trimmed)
		}
	}

	return outcome
}
