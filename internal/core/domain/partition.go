package domain

import (
	"fmt"
	"strings"
)

// Partition is a geographic unit of work processed independently.
type Partition struct {
	// Code is the short code, e.g. "CA".
	Code string

	// Country is the ISO 3166-1 alpha-2 country the partition belongs to.
	Country string
}

// ISO3166 returns the ISO 3166-2 subdivision code, e.g. "US-CA".
func (p Partition) ISO3166() string {
	return p.Country + "-" + p.Code
}

// String returns the partition code.
func (p Partition) String() string {
	return p.Code
}

// PartitionSet is an immutable, ordered set of partitions.
type PartitionSet struct {
	ordered []Partition
	byCode  map[string]Partition
}

// NewPartitionSet builds a set from the given partitions.
// Duplicate codes keep the first occurrence.
func NewPartitionSet(partitions ...Partition) PartitionSet {
	s := PartitionSet{
		ordered: make([]Partition, 0, len(partitions)),
		byCode:  make(map[string]Partition, len(partitions)),
	}
	for _, p := range partitions {
		p.Code = strings.ToUpper(p.Code)
		if _, ok := s.byCode[p.Code]; ok {
			continue
		}
		s.ordered = append(s.ordered, p)
		s.byCode[p.Code] = p
	}
	return s
}

// USStates returns the 50 US states as partitions.
func USStates() PartitionSet {
	codes := []string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
		"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
		"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
		"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
		"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	}
	partitions := make([]Partition, 0, len(codes))
	for _, code := range codes {
		partitions = append(partitions, Partition{Code: code, Country: "US"})
	}
	return NewPartitionSet(partitions...)
}

// All returns every partition in declaration order.
func (s PartitionSet) All() []Partition {
	out := make([]Partition, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Len returns the number of partitions.
func (s PartitionSet) Len() int {
	return len(s.ordered)
}

// Lookup finds a partition by code, case-insensitively.
func (s PartitionSet) Lookup(code string) (Partition, bool) {
	p, ok := s.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// Resolve maps codes to partitions, preserving order and dropping duplicates.
// An empty codes slice resolves to every partition.
// Unknown codes produce a ConfigError.
func (s PartitionSet) Resolve(codes []string) ([]Partition, error) {
	if len(codes) == 0 {
		return s.All(), nil
	}
	seen := make(map[string]bool, len(codes))
	out := make([]Partition, 0, len(codes))
	for _, code := range codes {
		p, ok := s.Lookup(code)
		if !ok {
			return nil, &ConfigError{
				Field:  "partition",
				Value:  code,
				Reason: fmt.Sprintf("unknown partition code (expected one of %d known codes)", s.Len()),
			}
		}
		if seen[p.Code] {
			continue
		}
		seen[p.Code] = true
		out = append(out, p)
	}
	return out, nil
}
