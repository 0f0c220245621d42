// Package validator validates request and domain structs through struct tags.
//
// Besides the stock go-playground rules it registers password, isbn13, slug,
// username and otpcode.
package validator

// Validator validates a struct and returns a field keyed error on failure.
type Validator interface {
	Validate(data any) error
}
