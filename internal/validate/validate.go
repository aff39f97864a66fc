package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone   = regexp.MustCompile(`^\+?[0-9 -]{7,15}$`)
	rePincode = regexp.MustCompile(`^[0-9]{6}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a resource identifier (uuid or seeded slug).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Password enforces a length window; bcrypt ignores bytes past 72.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72
}

// Phone accepts an empty value or a plain dialable number.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || rePhone.MatchString(s)
}

// Pincode accepts an empty value or a six digit postal code.
func Pincode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s == "" || rePincode.MatchString(s)
}

// Quantity accepts any positive line quantity; stock is the only upper bound.
func Quantity(n int) bool {
	return n >= 1
}
