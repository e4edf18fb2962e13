// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import "strings"

// RegionPredicate matches text that mentions a region. Tokens are compared
// case-insensitively as substrings of the upper-cased text. A nil predicate
// matches everything.
type RegionPredicate struct {
	tokens []string
}

// NewRegionPredicate builds a predicate from tokens. Blank tokens are
// ignored; with none left the result is nil.
func NewRegionPredicate(tokens ...string) *RegionPredicate {
	var up []string
	for _, t := range tokens {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			up = append(up, t)
		}
	}
	if len(up) == 0 {
		return nil
	}
	return &RegionPredicate{tokens: up}
}

// Match reports whether text contains any token.
func (p *RegionPredicate) Match(text string) bool {
	if p == nil {
		return true
	}
	text = strings.ToUpper(text)
	for _, t := range p.tokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Tokens returns the upper-cased tokens.
func (p *RegionPredicate) Tokens() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.tokens...)
}
