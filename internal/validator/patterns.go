package validator

import "regexp"

// Shared field formats used by the request descriptors and the callback rules.
var (
	UUID     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	Money    = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	Phone    = regexp.MustCompile(`^\+380\d{9}$`)
	IBAN     = regexp.MustCompile(`^UA\d{27}$`)
	Digits   = regexp.MustCompile(`^\d+$`)
	SubState = regexp.MustCompile(`^[A-Z_]+$`)

	PaymentInstallments = regexp.MustCompile(`^payment_installments$`)
)
