package slack

import (
	"regexp"
	"strings"
)

// mentionPattern matches Slack user-mention tokens like <@U0123ABCD>.
var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// Parser extracts a grocery list from the free-form text of a mention.
type Parser struct {
	botName *regexp.Regexp
}

// NewParser creates a Parser that also strips the literal bot-name token
// (e.g. "@trolley-bot") case-insensitively.
func NewParser(botName string) *Parser {
	return &Parser{
		botName: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(botName)),
	}
}

// Parse returns the grocery items in text, in order. Mention tokens and the
// bot name are stripped first; a comma anywhere selects comma splitting,
// otherwise items are one per line. Empty segments are dropped; repeated
// items are kept.
func (p *Parser) Parse(text string) []string {
	text = mentionPattern.ReplaceAllString(text, "")
	text = p.botName.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	var parts []string
	if strings.Contains(text, ",") {
		parts = strings.Split(text, ",")
	} else {
		parts = strings.Split(text, "\n")
	}

	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
