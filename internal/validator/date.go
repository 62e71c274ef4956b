package validator

import "time"

// DateLayout is the YYYY-MM-DD format the API uses for invoice and report dates.
const DateLayout = "2006-01-02"

// IsValidDate reports whether s is a real YYYY-MM-DD date.
func IsValidDate(date string) bool {
	if len(date) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
