// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import "ipsift/internal/table"

// Input is one loaded file. Table is nil for inputs with no tabular form
// (PDF text); Text always holds the decoded content.
type Input struct {
	Table *table.RawTable
	Text  string
}

// Strategy is one way of extracting addresses from an Input.
type Strategy struct {
	Name string
	Run  func(e *Extractor, in Input, region *RegionPredicate) AddressSet
}

// Strategy names reported per file.
const (
	StrategyStructured = "structured"
	StrategyFallback   = "fallback"
	StrategyNone       = "none"
)

var (
	// Structured reads the header-resolved columns of Input.Table.
	Structured = Strategy{
		Name: StrategyStructured,
		Run: func(e *Extractor, in Input, region *RegionPredicate) AddressSet {
			return e.Structured(in.Table, region)
		},
	}

	// Fallback scans Input.Text line by line.
	Fallback = Strategy{
		Name: StrategyFallback,
		Run: func(e *Extractor, in Input, region *RegionPredicate) AddressSet {
			return e.Fallback(in.Text, region)
		},
	}

	// None finds nothing. RunChain returns it when no strategy matched.
	None = Strategy{
		Name: StrategyNone,
		Run: func(*Extractor, Input, *RegionPredicate) AddressSet {
			return NewAddressSet()
		},
	}
)

// DefaultChain is the structured reader backed by the text scanner.
func DefaultChain() []Strategy {
	return []Strategy{Structured, Fallback}
}

// RunChain evaluates chain in order and returns the first non-empty result
// with the strategy that produced it. When every strategy comes back empty
// the result is an empty set and None.
//
// The returned strategy is the one to reuse for region-filtered passes
// over the same input, so a region never falls back further than the
// unfiltered pass did.
func (e *Extractor) RunChain(chain []Strategy, in Input, region *RegionPredicate) (AddressSet, Strategy) {
	for _, s := range chain {
		if got := s.Run(e, in, region); len(got) > 0 {
			return got, s
		}
	}
	return NewAddressSet(), None
}
