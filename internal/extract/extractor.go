// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract pulls target-port addresses out of parsed tables and
// free text.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ipsift/internal/headers"
	"ipsift/internal/table"
	"ipsift/internal/validators/ipaddress"
)

// DefaultTargetPort is the port extracted when none is configured.
const DefaultTargetPort = "443"

// DefaultExcludePorts are the port numbers that disqualify a line in the
// fallback scan. They share the digits of 443 and would otherwise be
// confused with it by a loose reader.
var DefaultExcludePorts = []string{"8443", "3443", "2443", "1443"}

// Config controls an Extractor.
type Config struct {
	// TargetPort is the decimal port a record must carry.
	TargetPort string
	// Rules is the header synonym table; nil means headers.DefaultRules().
	Rules headers.RuleTable
	// ExcludePorts disqualify a fallback line when present as a word.
	ExcludePorts []string
	// Exclude drops addresses inside configured ranges. May be nil.
	Exclude *ipaddress.RangeFilter
}

// Extractor applies one Config to any number of inputs. It holds only
// compiled, read-only state and is safe for concurrent use.
type Extractor struct {
	port     string
	rules    headers.RuleTable
	exclude  *ipaddress.RangeFilter
	withPort *regexp.Regexp
	portWord *regexp.Regexp
	excluded *regexp.Regexp
}

// New validates cfg and compiles its patterns.
func New(cfg Config) (*Extractor, error) {
	port := strings.TrimSpace(cfg.TargetPort)
	if port == "" {
		port = DefaultTargetPort
	}
	if err := ValidatePort(port); err != nil {
		return nil, err
	}

	rules := cfg.Rules
	if rules == nil {
		rules = headers.DefaultRules()
	}

	e := &Extractor{
		port:     port,
		rules:    rules,
		exclude:  cfg.Exclude,
		withPort: regexp.MustCompile(`\b((?:[0-9]{1,3}\.){3}[0-9]{1,3}):` + port + `\b`),
		portWord: regexp.MustCompile(`\b` + port + `\b`),
	}

	var ex []string
	for _, p := range cfg.ExcludePorts {
		p = strings.TrimSpace(p)
		if p == "" || p == port {
			continue
		}
		if err := ValidatePort(p); err != nil {
			return nil, fmt.Errorf("exclude port: %w", err)
		}
		ex = append(ex, p)
	}
	if len(ex) > 0 {
		e.excluded = regexp.MustCompile(`\b(?:` + strings.Join(ex, "|") + `)\b`)
	}
	return e, nil
}

// ValidatePort checks that s is a canonical decimal port in 1..65535.
func ValidatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 || strconv.Itoa(n) != s {
		return fmt.Errorf("invalid port %q", s)
	}
	return nil
}

// TargetPort returns the port this extractor matches.
func (e *Extractor) TargetPort() string {
	return e.port
}

// Structured reads records of t whose port column equals the target port
// and, with a region predicate, whose region column (or whole row when no
// region column was found) matches it. The first row that is not blank is
// the header. Rows too short for the port or address column are skipped.
func (e *Extractor) Structured(t *table.RawTable, region *RegionPredicate) AddressSet {
	out := NewAddressSet()
	if t == nil {
		return out
	}
	header := t.Header()
	if header == nil {
		return out
	}

	m := headers.Resolve(header, e.rules)
	portIdx := m.Index(headers.RolePort)
	addrIdx := m.Index(headers.RoleAddress)
	regionIdx := m.Index(headers.RoleRegion)
	if portIdx == headers.Unresolved || addrIdx == headers.Unresolved {
		return out
	}
	need := max(portIdx, addrIdx)
	sep := string(t.Delimiter)

	for _, row := range t.DataRows() {
		if len(row) <= need || table.IsEmptyRow(row) {
			continue
		}
		if strings.TrimSpace(row[portIdx]) != e.port {
			continue
		}
		if region != nil {
			text := strings.Join(row, sep)
			if regionIdx != headers.Unresolved {
				text = ""
				if regionIdx < len(row) {
					text = row[regionIdx]
				}
			}
			if !region.Match(text) {
				continue
			}
		}
		if a, ok := ipaddress.FindFirst(strings.TrimSpace(row[addrIdx])); ok {
			e.add(out, a)
		}
	}
	return out
}

// Fallback scans free text. The first pass takes every "address:port"
// occurrence. The second pass takes every valid address on a line that
// carries the target port as a whole number and none of the excluded
// ports. The result is the union of both passes. With a region predicate,
// a line must also mention a region token.
func (e *Extractor) Fallback(content string, region *RegionPredicate) AddressSet {
	out := NewAddressSet()

	for _, line := range strings.Split(content, "\n") {
		if !region.Match(line) {
			continue
		}
		for _, m := range e.withPort.FindAllStringSubmatch(line, -1) {
			if ipaddress.IsValid(m[1]) {
				e.add(out, ipaddress.Address(m[1]))
			}
		}
		if !e.portWord.MatchString(line) {
			continue
		}
		if e.excluded != nil && e.excluded.MatchString(line) {
			continue
		}
		for _, a := range ipaddress.FindAll(line) {
			e.add(out, a)
		}
	}
	return out
}

func (e *Extractor) add(s AddressSet, a ipaddress.Address) {
	if e.exclude.Excludes(a) {
		return
	}
	s.Add(a)
}
