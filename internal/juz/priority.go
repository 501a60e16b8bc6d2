package juz

import "sort"

// Normalize returns the juz numbers sorted ascending with duplicates removed.
// It does not filter out-of-range values; use AllValid for that.
func Normalize(list []int) []int {
	out := make([]int, 0, len(list))
	seen := make(map[int]bool, len(list))
	for _, n := range list {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// AllValid reports whether every element is a juz number.
func AllValid(list []int) bool {
	for _, n := range list {
		if !ValidJuz(n) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of n in list or -1.
func IndexOf(list []int, n int) int {
	for i, v := range list {
		if v == n {
			return i
		}
	}
	return -1
}

// Contains reports whether n is in list.
func Contains(list []int, n int) bool {
	return IndexOf(list, n) >= 0
}

// Union returns list extended by add, normalized.
func Union(list, add []int) []int {
	return Normalize(append(append([]int{}, list...), add...))
}

// Without returns list with every element of remove dropped, normalized.
func Without(list, remove []int) []int {
	out := make([]int, 0, len(list))
	for _, n := range list {
		if !Contains(remove, n) {
			out = append(out, n)
		}
	}
	return Normalize(out)
}

// Diff returns the elements of a missing from b.
func Diff(a, b []int) []int {
	var out []int
	for _, n := range a {
		if !Contains(b, n) {
			out = append(out, n)
		}
	}
	return out
}
