package utils

import (
	"errors"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ATYR", "ATYR"},
		{"atyr", "ATYR"},
		{" atyr ", "ATYR"},
		{"$nvda", "NVDA"},
		{"NASDAQ:ATYR", "ATYR"},
		{"nyse: brk.b", "BRK.B"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeSymbol(tt.input); got != tt.expected {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateSymbol(t *testing.T) {
	valid := []string{"ATYR", "BRK.B", "BF-B", "A"}
	for _, s := range valid {
		if err := ValidateSymbol(s); err != nil {
			t.Errorf("ValidateSymbol(%q) = %v", s, err)
		}
	}

	if err := ValidateSymbol(""); !errors.Is(err, ErrEmptySymbol) {
		t.Errorf("empty: got %v", err)
	}
	invalid := []string{"AT YR", "atyr", "ABCDEFGHIJKLM", "AT$"}
	for _, s := range invalid {
		if err := ValidateSymbol(s); err == nil {
			t.Errorf("ValidateSymbol(%q) should fail", s)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "$0.00"},
		{6.42, "$6.42"},
		{999.999, "$1,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-1500, "-$1,500.00"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.expected {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatCost(0.00125); got != "$0.0013" && got != "$0.0012" {
		t.Errorf("FormatCost = %q", got)
	}
	if got := FormatCost(0); got != "$0.0000" {
		t.Errorf("FormatCost(0) = %q", got)
	}
	if got := FormatScore(0.35); got != "+0.35" {
		t.Errorf("FormatScore = %q", got)
	}
	if got := FormatScore(-0.2); got != "-0.20" {
		t.Errorf("FormatScore = %q", got)
	}
	if got := FormatScore(0); got != "0.00" {
		t.Errorf("FormatScore(0) = %q", got)
	}
	if got := FormatPercent(70); got != "70%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(62.5); got != "62.5%" {
		t.Errorf("FormatPercent = %q", got)
	}
}
