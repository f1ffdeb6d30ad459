package service

import (
	"errors"
	"strings"
)

// ErrInvalidCurrency indicates a currency code is not three ASCII letters.
var ErrInvalidCurrency = errors.New("invalid currency code format")

// ErrUnsupportedPair indicates neither side of the pair is the source's base currency.
var ErrUnsupportedPair = errors.New("pair has no side in the source base currency")

// ErrInvalidRefreshID indicates the refresh ID format is invalid.
var ErrInvalidRefreshID = errors.New("invalid refresh_id")

// ErrInvalidWindow indicates the requested date window is empty or reversed.
var ErrInvalidWindow = errors.New("invalid date window")

// ErrUnknownSource indicates no provider is registered for the source.
var ErrUnknownSource = errors.New("unknown rate source")

// ErrNotFound indicates the requested resource was not found.
var ErrNotFound = errors.New("not found")

// ErrInternal indicates an internal server error.
var ErrInternal = errors.New("internal error")

// ErrInternalQueue indicates an internal queue error.
var ErrInternalQueue = errors.New("internal queue error")

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// normalizeCurrency validates and uppercases a currency code.
func normalizeCurrency(code string) (string, error) {
	if !IsValidCurrencyCode(code) {
		return "", ErrInvalidCurrency
	}
	return strings.ToUpper(code), nil
}
