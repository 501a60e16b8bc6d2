package review

import "github.com/example/hifzbot/internal/juz"

// Prayer is one of the five daily time slots.
type Prayer int

const (
	Fajr Prayer = iota
	Dhuhr
	Asr
	Maghrib
	Isha
)

// SlotCount is the number of daily prayers pages are spread over.
const SlotCount = 5

var prayerNames = [SlotCount]string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

func (p Prayer) String() string {
	if p < 0 || int(p) >= SlotCount {
		return "Unknown"
	}
	return prayerNames[p]
}

// Slot is the page span assigned to one prayer.
type Slot struct {
	Prayer   Prayer
	FromPage int
	ToPage   int
	Pages    int
}

// Plan is today's review assignment.
type Plan struct {
	Sections   []SectionRef
	Slots      []Slot
	TotalPages int
}

// DailyBudget returns how many pages may be assigned for the given quota.
func DailyBudget(sectionsPerDay int) int {
	return juz.PagesPerJuz * sectionsPerDay
}

// BuildPlan expands sections into pages, caps them at the daily budget and
// splits them over the prayers. ok is false when there is nothing to review.
func BuildPlan(sections []SectionRef, pagesMemorized, sectionsPerDay int) (plan Plan, ok bool) {
	var pages []int
	for _, s := range sections {
		start, end := juz.PageRange(s.Number, pagesMemorized, s.Priority)
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}

	if budget := DailyBudget(sectionsPerDay); len(pages) > budget {
		pages = pages[:budget]
	}
	if len(pages) == 0 {
		return Plan{}, false
	}

	plan = Plan{
		Sections:   append([]SectionRef{}, sections...),
		Slots:      splitSlots(pages),
		TotalPages: len(pages),
	}
	return plan, true
}

// splitSlots partitions pages into at most SlotCount consecutive buckets of
// ceil(len/SlotCount) pages; buckets starting past the end are dropped.
func splitSlots(pages []int) []Slot {
	size := (len(pages) + SlotCount - 1) / SlotCount
	slots := make([]Slot, 0, SlotCount)
	for i := 0; i < SlotCount; i++ {
		start := i * size
		if start >= len(pages) {
			break
		}
		end := start + size
		if end > len(pages) {
			end = len(pages)
		}
		bucket := pages[start:end]
		slots = append(slots, Slot{
			Prayer:   Prayer(i),
			FromPage: bucket[0],
			ToPage:   bucket[len(bucket)-1],
			Pages:    len(bucket),
		})
	}
	return slots
}
