package kripke

import (
	"sort"
	"strconv"
	"strings"
)

// StateSet is a set of node identifiers. A nil StateSet reads as empty.
type StateSet map[NodeID]struct{}

func NewStateSet(ids ...NodeID) StateSet {
	s := make(StateSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s StateSet) Has(id NodeID) bool { _, ok := s[id]; return ok }
func (s StateSet) Add(id NodeID)      { s[id] = struct{}{} }
func (s StateSet) Len() int           { return len(s) }

func (s StateSet) Copy() StateSet {
	out := make(StateSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func (s StateSet) Equals(other StateSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// Subset reports whether every member of s is in other.
func (s StateSet) Subset(other StateSet) bool {
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func (s StateSet) Intersect(other StateSet) StateSet {
	out := NewStateSet()
	for k := range s {
		if other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

func (s StateSet) Union(other StateSet) StateSet {
	out := s.Copy()
	for k := range other {
		out.Add(k)
	}
	return out
}

func (s StateSet) Difference(other StateSet) StateSet {
	out := NewStateSet()
	for k := range s {
		if !other.Has(k) {
			out.Add(k)
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s StateSet) Sorted() []NodeID {
	out := make([]NodeID, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s StateSet) String() string {
	ids := s.Sorted()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
