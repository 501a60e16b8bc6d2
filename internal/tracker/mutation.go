package tracker

import (
	"fmt"

	"github.com/example/hifzbot/internal/juz"
	"github.com/example/hifzbot/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Mutation is a user edit of their progress record.
type Mutation struct {
	Type     models.ActionType
	Value    int   // new page count or juz per day
	Sections []int // juz to add to or remove from the priority list
}

// AddPage marks one more page as memorized.
func AddPage() Mutation {
	return Mutation{Type: models.ActionAddPage}
}

// SetPages overwrites the memorized page count.
func SetPages(pages int) Mutation {
	return Mutation{Type: models.ActionSetPageCountManual, Value: pages}
}

// SetSectionsPerDay changes the daily review quota.
func SetSectionsPerDay(n int) Mutation {
	return Mutation{Type: models.ActionSetSectionsPerDay, Value: n}
}

// AddPriority adds juz to the priority list.
func AddPriority(sections ...int) Mutation {
	return Mutation{Type: models.ActionAddPriority, Sections: sections}
}

// RemovePriority drops juz from the priority list.
func RemovePriority(sections ...int) Mutation {
	return Mutation{Type: models.ActionRemovePriority, Sections: sections}
}

// ClearPriority empties the priority list.
func ClearPriority() Mutation {
	return Mutation{Type: models.ActionClearPriority}
}

var pageCountRule = fmt.Sprintf("gte=0,lte=%d", juz.TotalPages)
var sectionsPerDayRule = fmt.Sprintf("gte=%d,lte=%d", models.MinSectionsPerDay, models.MaxSectionsPerDay)
var sectionListRule = fmt.Sprintf("required,min=1,dive,gte=1,lte=%d", juz.TotalJuz)

func validateMutation(v *validator.Validate, m Mutation) error {
	var err error
	switch m.Type {
	case models.ActionAddPage, models.ActionClearPriority:
	case models.ActionSetPageCountManual:
		err = v.Var(m.Value, pageCountRule)
	case models.ActionSetSectionsPerDay:
		err = v.Var(m.Value, sectionsPerDayRule)
	case models.ActionAddPriority, models.ActionRemovePriority:
		err = v.Var(m.Sections, sectionListRule)
	default:
		return fmt.Errorf("%w: unknown mutation %q", ErrInvalidInput, m.Type)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, m.Type, err)
	}
	return nil
}

// apply computes the record after m and the action describing it.
// user is not modified.
func apply(user models.UserProgress, m Mutation) (models.UserProgress, models.ActionRecord, error) {
	next := user.Clone()
	rec := models.ActionRecord{UserID: user.UserID, ActionType: m.Type}

	switch m.Type {
	case models.ActionAddPage:
		if user.PagesMemorized >= juz.TotalPages {
			return user, rec, ErrAllPagesMemorized
		}
		next.PagesMemorized++
		rec.PreviousValue, rec.NewValue = user.PagesMemorized, next.PagesMemorized

	case models.ActionSetPageCountManual:
		if m.Value == user.PagesMemorized {
			return user, rec, ErrNoChange
		}
		next.PagesMemorized = m.Value
		rec.PreviousValue, rec.NewValue = user.PagesMemorized, m.Value

	case models.ActionSetSectionsPerDay:
		if m.Value == user.SectionsPerDay {
			return user, rec, ErrNoChange
		}
		next.SectionsPerDay = m.Value
		rec.PreviousValue, rec.NewValue = user.SectionsPerDay, m.Value

	case models.ActionAddPriority, models.ActionRemovePriority, models.ActionClearPriority:
		var list []int
		switch m.Type {
		case models.ActionAddPriority:
			list = juz.Union(user.PriorityList, m.Sections)
		case models.ActionRemovePriority:
			list = juz.Without(user.PriorityList, m.Sections)
		default:
			list = []int{}
		}
		if len(list) == len(user.PriorityList) {
			return user, rec, ErrNoChange
		}
		next.PriorityList = list
		rec.PreviousPriorityList = juz.Normalize(user.PriorityList)
		rec.NewPriorityList = list
	}

	next.CachedPlanDate = ""
	return next, rec, nil
}

// touchesSnapshot reports whether undoing or applying t changes the numbers
// recorded in the daily snapshot.
func touchesSnapshot(t models.ActionType) bool {
	switch t {
	case models.ActionAddPage, models.ActionSetPageCountManual, models.ActionSetSectionsPerDay:
		return true
	}
	return false
}
