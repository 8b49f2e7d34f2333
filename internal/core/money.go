// Package core holds the domain records of the outreach service.
//
// This file contains parsing helpers for the participant and promotion
// counts users type into spreadsheets.
package core

import (
	"strconv"
	"strings"
)

// ParseCount parses a non-negative participant or promotion count.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCount
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, ErrInvalidCount
	}
	return v, nil
}

// CountOrZero is ParseCount with missing or malformed input coerced to 0.
func CountOrZero(s string) int {
	v, err := ParseCount(s)
	if err != nil {
		return 0
	}
	return v
}
