package validation

import "strings"

const maxBarcodeLength = 512

// ReadRequest mirrors the fields of a barcode read submission.
type ReadRequest struct {
	Code string
}

// ValidateReadRequest validates a submitted barcode read. Blank codes are
// rejected here, before they can reach the debounce guard.
func ValidateReadRequest(req ReadRequest) []FieldError {
	var errs []FieldError

	code := strings.TrimSpace(req.Code)
	if code == "" {
		errs = append(errs, FieldError{Field: "code", Message: "code is required"})
	} else if len(code) > maxBarcodeLength {
		errs = append(errs, FieldError{Field: "code", Message: "code must be at most 512 characters"})
	}

	return errs
}
