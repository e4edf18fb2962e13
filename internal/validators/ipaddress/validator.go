// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"regexp"
	"strconv"
	"strings"
)

// Address is a dotted-quad IPv4 string that passed IsValid.
// Ordering and equality are plain string comparisons.
type Address string

// candidatePattern matches anything shaped like a dotted quad. Octet ranges
// are checked separately by IsValid so that "999.1.1.1" is still found and
// then rejected instead of being partially matched as "99.1.1.1".
var candidatePattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)

// IsValid reports whether token is exactly four dot-separated decimal parts,
// each in [0,255]. Leading zeros are accepted. It never panics.
func IsValid(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return false
	}

	for _, part := range parts {
		if part == "" || !allDigits(part) {
			return false
		}
		// Long zero-padded parts are still in range; anything else longer
		// than three significant digits is not.
		digits := strings.TrimLeft(part, "0")
		if len(digits) > 3 {
			return false
		}
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n > 255 {
			return false
		}
	}

	return true
}

// FindFirst returns the first IPv4-shaped substring of s if it validates.
// Only the first candidate is considered; a cell such as
// "999.1.1.1 / 1.2.3.4" yields nothing.
func FindFirst(s string) (Address, bool) {
	candidate := candidatePattern.FindString(s)
	if candidate == "" || !IsValid(candidate) {
		return "", false
	}
	return Address(candidate), true
}

// FindAll returns every IPv4-shaped substring of s that validates, in order
// of appearance. Duplicates are kept.
func FindAll(s string) []Address {
	candidates := candidatePattern.FindAllString(s, -1)
	if len(candidates) == 0 {
		return nil
	}

	found := make([]Address, 0, len(candidates))
	for _, c := range candidates {
		if IsValid(c) {
			found = append(found, Address(c))
		}
	}
	return found
}

// allDigits reports whether s consists only of ASCII decimal digits.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
