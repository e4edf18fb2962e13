// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"sort"

	"ipsift/internal/validators/ipaddress"
)

// AddressSet is a set of validated addresses. The zero value is not usable;
// create one with NewAddressSet.
type AddressSet map[ipaddress.Address]struct{}

// NewAddressSet returns a set holding addrs.
func NewAddressSet(addrs ...ipaddress.Address) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

// Add inserts a.
func (s AddressSet) Add(a ipaddress.Address) {
	s[a] = struct{}{}
}

// Contains reports whether a is in the set.
func (s AddressSet) Contains(a ipaddress.Address) bool {
	_, ok := s[a]
	return ok
}

// Union adds every member of other to s.
func (s AddressSet) Union(other AddressSet) {
	for a := range other {
		s[a] = struct{}{}
	}
}

// Sorted returns the members in ascending lexical order.
func (s AddressSet) Sorted() []ipaddress.Address {
	out := make([]ipaddress.Address, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings is Sorted as plain strings.
func (s AddressSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, a := range sorted {
		out[i] = string(a)
	}
	return out
}
