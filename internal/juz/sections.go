// Package juz maps memorized page counts onto the 30 juz of the Quran.
//
// Page 1 (al-Fatiha) is never counted. Juz 1 therefore covers pages 2..20
// and juz 30 is the long one, pages 581..604.
package juz

const (
	TotalPages   = 604
	TotalJuz     = 30
	PagesPerJuz  = 20
	FirstPage    = 2
	LastJuzStart = (TotalJuz-1)*PagesPerJuz + 1 // 581
)

// PageRange returns the first and last page of juz n that should be
// reviewed. Priority juz are reviewed whole; base juz are clipped to the
// pages memorized so far. start > end means the juz contributes nothing.
func PageRange(n, pagesMemorized int, isPriority bool) (start, end int) {
	switch n {
	case 1:
		start, end = FirstPage, PagesPerJuz
	case TotalJuz:
		start, end = LastJuzStart, TotalPages
	default:
		start, end = (n-1)*PagesPerJuz+1, n*PagesPerJuz
	}
	if !isPriority && pagesMemorized < end {
		end = pagesMemorized
	}
	return start, end
}

// PageCount returns how many pages PageRange yields, never negative.
func PageCount(n, pagesMemorized int, isPriority bool) int {
	start, end := PageRange(n, pagesMemorized, isPriority)
	if start > end {
		return 0
	}
	return end - start + 1
}

// IsFullyMemorized reports whether juz n is complete. Priority juz are
// always shown as complete.
func IsFullyMemorized(n, pagesMemorized int, isPriority bool) bool {
	if isPriority {
		return true
	}
	switch n {
	case 1:
		return pagesMemorized >= PagesPerJuz
	case TotalJuz:
		return pagesMemorized >= TotalPages
	default:
		return pagesMemorized >= n*PagesPerJuz
	}
}

// ValidJuz reports whether n is a juz number.
func ValidJuz(n int) bool {
	return n >= 1 && n <= TotalJuz
}

// ValidPageCount reports whether p is an allowed number of memorized pages.
func ValidPageCount(p int) bool {
	return p >= 0 && p <= TotalPages
}
