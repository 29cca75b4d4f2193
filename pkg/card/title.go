package card

import "strings"

// NormalizeTitle collapses an event title into a stable activity signature
// component: lower-cased, trimmed, inner whitespace squeezed. "Tuesday
// Climbing " and "tuesday  climbing" are the same recurring activity.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
