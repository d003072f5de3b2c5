// pluralize.go holds the small Portuguese number helpers
// used in operator notifications.

package common

import "fmt"

// Pluralize picks the singular form for |n| == 1 and the plural form otherwise.
//
// Examples:
//
//	Pluralize(1, "giro", "giros") → "giro"
//	Pluralize(0, "giro", "giros") → "giros"
func Pluralize(n int64, singular, plural string) string {
	if n == 1 || n == -1 {
		return singular
	}
	return plural
}

// CountOf renders "3 giros", "1 nível" and so on.
func CountOf(n int64, singular, plural string) string {
	return fmt.Sprintf("%s %s", FormatNumber(n), Pluralize(n, singular, plural))
}

// FormatNumber formats an integer with dots as thousands separators.
// Example: FormatNumber(2350) → "2.350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(fmt.Sprintf("%d", n))
}
