package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/hifzbot/internal/juz"
	"github.com/example/hifzbot/pkg/models"
)

var (
	errNotANumber = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
)

var listSeparator = regexp.MustCompile(`[,\s]+`)

// parseJuzList reads juz numbers separated by commas or spaces, e.g. "5, 10 15".
// Every item must be a number from 1 to 30.
func parseJuzList(text string) ([]int, error) {
	var out []int
	for _, item := range listSeparator.Split(strings.TrimSpace(text), -1) {
		if item == "" {
			continue
		}
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, errNotANumber
		}
		if !juz.ValidJuz(n) {
			return nil, errOutOfRange
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errNotANumber
	}
	return out, nil
}

// parsePageCount reads a memorized page count from 0 to 604
func parsePageCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errNotANumber
	}
	if !juz.ValidPageCount(n) {
		return 0, errOutOfRange
	}
	return n, nil
}

// parseAutoCalc reads "<full juz> <pages in the next juz>" and returns the page count
func parseAutoCalc(text string) (int, error) {
	fields := listSeparator.Split(strings.TrimSpace(text), -1)
	if len(fields) != 2 {
		return 0, errNotANumber
	}
	full, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, errNotANumber
	}
	next, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, errNotANumber
	}
	pages, ok := juz.PagesFor(full, next)
	if !ok {
		return 0, errOutOfRange
	}
	return pages, nil
}

// parseSectionsPerDay accepts the quota buttons "1" to "5"
func parseSectionsPerDay(text string) (int, bool) {
	if len(text) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < models.MinSectionsPerDay || n > models.MaxSectionsPerDay {
		return 0, false
	}
	return n, true
}
