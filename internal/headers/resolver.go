// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package headers infers which column of a loosely named header row holds
// each field role.
package headers

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Role is a semantic field role.
type Role string

const (
	RolePort    Role = "port"
	RoleAddress Role = "address"
	RoleRegion  Role = "region"
)

// Roles lists every role in resolution order.
var Roles = []Role{RolePort, RoleAddress, RoleRegion}

// Unresolved marks a role with no column.
const Unresolved = -1

// DefaultPosition says which column a role falls back to.
type DefaultPosition int

const (
	DefaultNone DefaultPosition = iota
	DefaultFirst
	DefaultLast
)

// Rule lists the header names recognised for one role.
type Rule struct {
	Exact      []string
	Substrings []string
	Default    DefaultPosition
}

// RuleTable maps each role to its naming rule.
type RuleTable map[Role]Rule

// DefaultRules returns the built-in synonym table. The returned value is a
// fresh copy and may be modified by the caller.
func DefaultRules() RuleTable {
	return RuleTable{
		RolePort: {
			Exact:      []string{"port", "port_number", "dstport", "portid", "端口", "端口号"},
			Substrings: []string{"port"},
			Default:    DefaultLast,
		},
		RoleAddress: {
			Exact:      []string{"ip", "ip_address", "address", "dstip", "ipaddr", "ip地址", "地址"},
			Substrings: []string{"ip"},
			Default:    DefaultFirst,
		},
		RoleRegion: {
			Exact: []string{
				"region", "country", "location", "zone", "colo",
				"地区", "国家", "位置", "区域", "数据中心",
			},
			Substrings: []string{"region", "country", "location", "zone"},
			Default:    DefaultNone,
		},
	}
}

// WithExtra returns a copy of rt with extra exact names appended to a role.
// Names are normalised the same way header cells are.
func (rt RuleTable) WithExtra(role Role, names ...string) RuleTable {
	out := make(RuleTable, len(rt))
	for r, rule := range rt {
		rule.Exact = append([]string(nil), rule.Exact...)
		rule.Substrings = append([]string(nil), rule.Substrings...)
		out[r] = rule
	}
	rule := out[role]
	for _, n := range names {
		if n = Normalize(n); n != "" {
			rule.Exact = append(rule.Exact, n)
		}
	}
	out[role] = rule
	return out
}

// HeaderMap is the resolved column index per role.
type HeaderMap map[Role]int

// Index returns the column for role, or Unresolved.
func (m HeaderMap) Index(role Role) int {
	idx, ok := m[role]
	if !ok {
		return Unresolved
	}
	return idx
}

// Resolved reports whether role has a column.
func (m HeaderMap) Resolved(role Role) bool {
	return m.Index(role) != Unresolved
}

// Normalize folds a header cell for comparison: NFKC (full-width letters
// become ASCII), trimmed and lower-cased.
func Normalize(cell string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(cell)))
}

// Resolve maps each role in rt to a column of header. Exact names win over
// substrings, and the leftmost column wins within each pass. A role with no
// match takes its default position; an empty header leaves every role
// unresolved.
func Resolve(header []string, rt RuleTable) HeaderMap {
	cells := make([]string, len(header))
	for i, c := range header {
		cells[i] = Normalize(c)
	}

	m := make(HeaderMap, len(rt))
	for role, rule := range rt {
		m[role] = resolveRole(cells, rule)
	}
	return m
}

func resolveRole(cells []string, rule Rule) int {
	for i, c := range cells {
		for _, name := range rule.Exact {
			if c == name {
				return i
			}
		}
	}
	for i, c := range cells {
		for _, sub := range rule.Substrings {
			if sub != "" && strings.Contains(c, sub) {
				return i
			}
		}
	}
	if len(cells) == 0 {
		return Unresolved
	}
	switch rule.Default {
	case DefaultFirst:
		return 0
	case DefaultLast:
		return len(cells) - 1
	default:
		return Unresolved
	}
}
