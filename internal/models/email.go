package models

import "strings"

// NormalizeEmail lowercases and trims an address so it can be used as a
// lookup and routing key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
