package internal

import "strings"

var sanitizeReplacer = strings.NewReplacer("\n", "", "\r", "", "\t", " ")

// SanitizeString strips control characters that would allow log forging
// before a user-supplied value is written to the log or an error response.
func SanitizeString(s string) string {
	return sanitizeReplacer.Replace(s)
}
