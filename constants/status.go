package constants

// ValidationStatus is the canonical status stored on an invoice row.
type ValidationStatus string

// Stable values (store these exact strings in DB).
const (
	ValidationStatusValid   ValidationStatus = "VALID"
	ValidationStatusInvalid ValidationStatus = "INVALID"
)

// StatusFor maps a validation outcome to its stored status.
func StatusFor(isValid bool) ValidationStatus {
	if isValid {
		return ValidationStatusValid
	}
	return ValidationStatusInvalid
}

// DefaultMinConfidence is the score below which a stored invoice is flagged for review.
const DefaultMinConfidence = 0.60
