// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"
)

// Well-known ranges that are never reachable service endpoints.
var (
	PrivateRanges = []string{
		"10.0.0.0/8",     // 10.0.0.0 - 10.255.255.255
		"172.16.0.0/12",  // 172.16.0.0 - 172.31.255.255
		"192.168.0.0/16", // 192.168.0.0 - 192.168.255.255
	}
	ReservedRanges = []string{
		"0.0.0.0/8",      // Current network
		"127.0.0.0/8",    // Loopback
		"169.254.0.0/16", // Link-local
		"224.0.0.0/4",    // Multicast
		"240.0.0.0/4",    // Reserved
	}
)

// RangeFilter drops addresses that fall inside a configured set of ranges.
// A nil *RangeFilter excludes nothing.
type RangeFilter struct {
	set *netipx.IPSet
}

// NewRangeFilter builds a filter from CIDR prefixes ("10.0.0.0/8"), ranges
// ("1.1.1.0-1.1.1.9"), single addresses, or the aliases "private" and
// "reserved". An empty list returns a nil filter.
func NewRangeFilter(specs []string) (*RangeFilter, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	var b netipx.IPSetBuilder
	for _, raw := range specs {
		spec := strings.TrimSpace(raw)
		switch strings.ToLower(spec) {
		case "":
			continue
		case "private":
			if err := addPrefixes(&b, PrivateRanges); err != nil {
				return nil, err
			}
			continue
		case "reserved":
			if err := addPrefixes(&b, ReservedRanges); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case strings.Contains(spec, "/"):
			p, err := netip.ParsePrefix(spec)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %q: %w", spec, err)
			}
			b.AddPrefix(p.Masked())
		case strings.Contains(spec, "-"):
			r, err := netipx.ParseIPRange(spec)
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %w", spec, err)
			}
			b.AddRange(r)
		default:
			a, err := netip.ParseAddr(spec)
			if err != nil {
				return nil, fmt.Errorf("invalid address %q: %w", spec, err)
			}
			b.Add(a)
		}
	}

	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("build range set: %w", err)
	}
	return &RangeFilter{set: set}, nil
}

// Excludes reports whether a falls inside the filter's ranges.
func (f *RangeFilter) Excludes(a Address) bool {
	if f == nil || f.set == nil {
		return false
	}
	addr, ok := toNetip(a)
	if !ok {
		return false
	}
	return f.set.Contains(addr)
}

func addPrefixes(b *netipx.IPSetBuilder, cidrs []string) error {
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", c, err)
		}
		b.AddPrefix(p)
	}
	return nil
}

// toNetip converts a validated address. netip.ParseAddr rejects leading
// zeros, which IsValid accepts, so the octets are converted by hand.
func toNetip(a Address) (netip.Addr, bool) {
	parts := strings.Split(string(a), ".")
	if len(parts) != 4 {
		return netip.Addr{}, false
	}
	var octets [4]byte
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return netip.Addr{}, false
		}
		octets[i] = byte(n)
	}
	return netip.AddrFrom4(octets), true
}
