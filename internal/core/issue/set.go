package issue

import (
	"cmp"
	"slices"
	"strconv"
)

// Sort orders issues by position, then by length, then by id.
func Sort(issues []Issue) {
	slices.SortStableFunc(issues, func(a, b Issue) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Length, b.Length); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Find returns the issue with the given id.
func Find(issues []Issue, id string) (Issue, bool) {
	for _, is := range issues {
		if is.ID == id {
			return is, true
		}
	}
	return Issue{}, false
}

// Without returns a copy of issues with the given id removed. All other
// issues are returned unchanged and in order.
func Without(issues []Issue, id string) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		if is.ID != id {
			out = append(out, is)
		}
	}
	return out
}

// Resolve accepts candidates in the given order, dropping any candidate that
// conflicts with one already accepted, and returns the survivors sorted by
// position. Earlier candidates win.
func Resolve(candidates []Issue) []Issue {
	accepted := make([]Issue, 0, len(candidates))
	for _, c := range candidates {
		if c.Position < 0 || c.Length < 0 {
			continue
		}
		if conflictsAny(accepted, c.Range()) {
			continue
		}
		accepted = append(accepted, c)
	}
	Sort(accepted)
	return accepted
}

// Overlapping reports whether any two issues conflict.
func Overlapping(issues []Issue) bool {
	for i := range issues {
		for j := i + 1; j < len(issues); j++ {
			if issues[i].Range().Conflicts(issues[j].Range()) {
				return true
			}
		}
	}
	return false
}

// CountByType tallies issues per type. Every known type has an entry.
func CountByType(issues []Issue) map[Type]int {
	counts := make(map[Type]int, len(Types))
	for _, t := range Types {
		counts[t] = 0
	}
	for _, is := range issues {
		counts[is.Type]++
	}
	return counts
}

func conflictsAny(accepted []Issue, r Range) bool {
	for _, a := range accepted {
		if a.Range().Conflicts(r) {
			return true
		}
	}
	return false
}

// RemoteRule is the rule id of issues reported by a remote analyzer.
const RemoteRule = "remote"

// Namespace returns copies of issues with ids rebuilt from rule and each
// issue's position, so ids from an outside source cannot collide with
// detector ids. An id that repeats, or that taken reports as in use, gets a
// numbered rule ("remote2-16", "remote3-16", ...).
func Namespace(issues []Issue, rule string, taken func(id string) bool) []Issue {
	out := make([]Issue, len(issues))
	used := make(map[string]bool, len(issues))
	for i, is := range issues {
		id := MakeID(rule, is.Position)
		for n := 2; used[id] || (taken != nil && taken(id)); n++ {
			id = MakeID(rule+strconv.Itoa(n), is.Position)
		}
		used[id] = true
		is.ID = id
		out[i] = is
	}
	return out
}
