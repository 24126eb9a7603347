package sqlite

import "strings"

// placeholders returns a comma-joined list of n "?" marks.
func placeholders(n int) string {
	return strings.Repeat("?, ", n-1) + "?"
}
