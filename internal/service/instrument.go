package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

var (
	cardDigitsRe = regexp.MustCompile(`^\d{16}$`)
	holderRe     = regexp.MustCompile(`^[\p{L} ]{3,}$`)
	monthRe      = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	yearRe       = regexp.MustCompile(`^\d{2,4}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
)

// Instrument field names reported on validation errors.
const (
	FieldCardNumber = "cardNumber"
	FieldCardHolder = "cardHolder"
	FieldExpMonth   = "expMonth"
	FieldExpYear    = "expYear"
	FieldCVV        = "cvv"
)

func invalidField(field, msg string) error {
	return &repository.Error{
		Kind:    repository.ErrInvalidInstrument,
		Code:    repository.CodeInvalidInstrument,
		Field:   field,
		Message: msg,
	}
}

// ValidateInstrument checks card data field by field and returns the first
// failure as an invalid_instrument error naming the field.
func ValidateInstrument(in model.Instrument) error {
	if !ValidCardNumber(in.CardNumber) {
		return invalidField(FieldCardNumber, "Card number is invalid")
	}
	if !holderRe.MatchString(strings.TrimSpace(in.CardHolder)) {
		return invalidField(FieldCardHolder, "Card holder name must be at least 3 letters")
	}
	if !monthRe.MatchString(strings.TrimSpace(in.ExpMonth)) {
		return invalidField(FieldExpMonth, "Expiry month must be two digits between 01 and 12")
	}
	if !yearRe.MatchString(strings.TrimSpace(in.ExpYear)) {
		return invalidField(FieldExpYear, "Expiry year must be 2 to 4 digits")
	}
	if !cvvRe.MatchString(strings.TrimSpace(in.CVV)) {
		return invalidField(FieldCVV, "CVV must be exactly 3 digits")
	}
	return nil
}

// ValidCardNumber reports whether number, with whitespace removed, is a
// 16 digit string passing the Luhn checksum.
func ValidCardNumber(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, number)
	if !cardDigitsRe.MatchString(digits) {
		return false
	}
	return luhn(digits)
}

// luhn expects an all-digit string.
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
