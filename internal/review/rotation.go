// Package review decides which juz to repeat today and how to spread the
// pages over the five daily prayers.
package review

import (
	"fmt"

	"github.com/example/hifzbot/internal/juz"
)

// SectionRef is one juz in the rotation.
type SectionRef struct {
	Number   int
	Priority bool // chosen by the user rather than reached by page progress
}

func (s SectionRef) String() string {
	if s.Priority {
		return fmt.Sprintf("%d*", s.Number)
	}
	return fmt.Sprintf("%d", s.Number)
}

// Next returns the juz that follows current in the cycle
// base 1..BaseCount, then the priority list in order, then back to base 1.
// ok is false only when there are neither base nor priority juz.
func Next(current SectionRef, pagesMemorized int, priority []int) (next SectionRef, ok bool) {
	base := juz.BaseCount(pagesMemorized)

	if current.Priority {
		// An unknown priority cursor behaves like the end of the list.
		if i := juz.IndexOf(priority, current.Number); i >= 0 && i < len(priority)-1 {
			return SectionRef{Number: priority[i+1], Priority: true}, true
		}
		if base > 0 {
			return SectionRef{Number: 1}, true
		}
		if len(priority) > 0 {
			return SectionRef{Number: priority[0], Priority: true}, true
		}
		return SectionRef{}, false
	}

	if current.Number < base {
		return SectionRef{Number: current.Number + 1}, true
	}
	if len(priority) > 0 {
		return SectionRef{Number: priority[0], Priority: true}, true
	}
	if base > 0 {
		return SectionRef{Number: 1}, true
	}
	return SectionRef{}, false
}

// Cursor turns the stored last-used juz number into a rotation position.
// A cursor that is neither in the priority list nor a reachable base juz
// is stale; it is treated as a priority juz whose successor cannot be found.
func Cursor(lastSectionUsed, pagesMemorized int, priority []int) SectionRef {
	if juz.Contains(priority, lastSectionUsed) {
		return SectionRef{Number: lastSectionUsed, Priority: true}
	}
	if lastSectionUsed > juz.BaseCount(pagesMemorized) {
		return SectionRef{Number: lastSectionUsed, Priority: true}
	}
	return SectionRef{Number: lastSectionUsed}
}

// TodaySections returns up to sectionsPerDay juz following the cursor.
// The result is empty when there is nothing to review.
func TodaySections(lastSectionUsed, pagesMemorized int, priority []int, sectionsPerDay int) []SectionRef {
	var today []SectionRef
	current := Cursor(lastSectionUsed, pagesMemorized, priority)
	for i := 0; i < sectionsPerDay; i++ {
		next, ok := Next(current, pagesMemorized, priority)
		if !ok {
			break
		}
		today = append(today, next)
		current = next
	}
	return today
}
