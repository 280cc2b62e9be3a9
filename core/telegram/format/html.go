// Package format holds small text helpers for HTML-mode Telegram messages.
package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// Bold wraps escaped text in <b> tags.
func Bold(s string) string {
	return "<b>" + EscapeHTML(s) + "</b>"
}

// Link renders an anchor with an escaped label; empty href yields the bare label.
func Link(label, href string) string {
	if strings.TrimSpace(href) == "" {
		return EscapeHTML(label)
	}
	return `<a href="` + EscapeHTML(href) + `">` + EscapeHTML(label) + "</a>"
}
