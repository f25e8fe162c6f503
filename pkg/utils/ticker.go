// Package utils provides small helpers shared by the CLI, the API and the
// engine.
package utils

import (
	"errors"
	"fmt"
	"strings"
)

// MaxSymbolLen bounds a ticker symbol.
const MaxSymbolLen = 12

// ErrEmptySymbol is returned for a blank symbol.
var ErrEmptySymbol = errors.New("symbol is required")

// Common cashtag and exchange decorations users paste along with a symbol.
var exchangePrefixes = []string{"NASDAQ:", "NYSE:", "AMEX:", "OTC:"}

// NormalizeSymbol upper-cases a user-input ticker and strips a leading
// cashtag ("$ATYR") or exchange prefix ("NASDAQ:ATYR").
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	symbol = strings.TrimPrefix(symbol, "$")
	for _, p := range exchangePrefixes {
		if strings.HasPrefix(symbol, p) {
			symbol = strings.TrimSpace(symbol[len(p):])
			break
		}
	}
	return symbol
}

// ValidateSymbol checks that a normalized symbol is non-empty, at most
// MaxSymbolLen long and made of letters, digits, '.' and '-'.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return ErrEmptySymbol
	}
	if len(symbol) > MaxSymbolLen {
		return fmt.Errorf("symbol %q is longer than %d characters", symbol, MaxSymbolLen)
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return fmt.Errorf("symbol %q contains invalid character %q", symbol, r)
		}
	}
	return nil
}
