package juz

// BaseCount returns the number of juz reachable purely by page progress.
func BaseCount(pagesMemorized int) int {
	switch {
	case pagesMemorized <= 0:
		return 0
	case pagesMemorized >= TotalPages:
		return TotalJuz
	case pagesMemorized <= PagesPerJuz:
		return 1
	}
	return (pagesMemorized - 1) / PagesPerJuz
}

// Progress describes the juz currently being memorized.
type Progress struct {
	Juz   int // 1..30
	Pages int // pages memorized inside Juz
	Total int // effective pages of Juz: 19 for the first, 24 for the last, 20 otherwise
}

// Complete reports whether every page of the current juz is memorized.
func (p Progress) Complete() bool {
	return p.Pages == p.Total
}

// CurrentProgress locates the juz that contains the last memorized page.
func CurrentProgress(pagesMemorized int) Progress {
	switch {
	case pagesMemorized <= 0:
		return Progress{Juz: 1, Pages: 0, Total: PagesPerJuz - 1}
	case pagesMemorized <= PagesPerJuz:
		return Progress{Juz: 1, Pages: pagesMemorized - 1, Total: PagesPerJuz - 1}
	case pagesMemorized >= LastJuzStart:
		if pagesMemorized > TotalPages {
			pagesMemorized = TotalPages
		}
		return Progress{
			Juz:   TotalJuz,
			Pages: pagesMemorized - LastJuzStart + 1,
			Total: TotalPages - LastJuzStart + 1,
		}
	}
	n := (pagesMemorized-1)/PagesPerJuz + 1
	start := (n-1)*PagesPerJuz + 1
	return Progress{Juz: n, Pages: pagesMemorized - start + 1, Total: PagesPerJuz}
}

// PagesFor is the inverse of CurrentProgress: it returns the memorized page
// count of someone who finished fullJuz juz and read pagesInNext pages of the
// following one. ok is false when the numbers do not fit the juz sizes.
func PagesFor(fullJuz, pagesInNext int) (pages int, ok bool) {
	if fullJuz < 0 || fullJuz > TotalJuz || pagesInNext < 0 {
		return 0, false
	}
	switch {
	case fullJuz == TotalJuz:
		return TotalPages, pagesInNext == 0
	case fullJuz == 0:
		if pagesInNext > PagesPerJuz-1 {
			return 0, false
		}
		if pagesInNext == 0 {
			return 0, true
		}
		return FirstPage - 1 + pagesInNext, true
	}

	limit := PagesPerJuz
	if fullJuz+1 == TotalJuz {
		limit = TotalPages - LastJuzStart + 1
	}
	if pagesInNext > limit {
		return 0, false
	}
	return fullJuz*PagesPerJuz + pagesInNext, true
}
