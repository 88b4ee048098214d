package dataprep

import (
	"fmt"
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Holiday is a named civil date.
type Holiday struct {
	Name string
	Date time.Time // midnight UTC
}

// Calendar enumerates the holidays of a year.
type Calendar interface {
	Holidays(year int) ([]Holiday, error)
}

// observedSuffix marks the weekday substitute of a weekend holiday.
const observedSuffix = " (Observed)"

// RuleCalendar computes holidays from rickar/cal rules. When a holiday's
// observed date differs from its actual date, both are listed, the second
// one suffixed with " (Observed)".
type RuleCalendar struct {
	rules    []*cal.Holiday
	observed bool
}

// NewRuleCalendar builds a calendar over the given rules.
func NewRuleCalendar(rules []*cal.Holiday, includeObserved bool) *RuleCalendar {
	return &RuleCalendar{rules: rules, observed: includeObserved}
}

// USHolidays are the federal rules under the names the feature columns
// are built from ("days_to_washingtons_birthday", "days_to_thanksgiving").
var USHolidays = []*cal.Holiday{
	us.NewYear,
	us.MlkDay.Clone(&cal.Holiday{Name: "Martin Luther King, Jr. Day"}),
	us.PresidentsDay.Clone(&cal.Holiday{Name: "Washington's Birthday"}),
	us.MemorialDay,
	us.Juneteenth.Clone(&cal.Holiday{Name: "Juneteenth National Independence Day"}),
	us.IndependenceDay,
	us.LaborDay,
	us.ColumbusDay,
	us.VeteransDay,
	us.ThanksgivingDay.Clone(&cal.Holiday{Name: "Thanksgiving"}),
	us.ChristmasDay,
}

// NewUSCalendar returns the US federal holiday calendar with observed days.
func NewUSCalendar() *RuleCalendar {
	return NewRuleCalendar(USHolidays, true)
}

// Holidays lists the dates falling in year, sorted by date. An observed
// day belongs to the year it falls in: 2010 holds the 2010-12-31 substitute
// for New Year's Day 2011, and 2011 does not.
func (c *RuleCalendar) Holidays(year int) ([]Holiday, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	out := make([]Holiday, 0, len(c.rules))
	for _, rule := range c.rules {
		if actual, _ := rule.Calc(year); !actual.IsZero() && actual.Year() == year {
			out = append(out, Holiday{Name: rule.Name, Date: civil(actual)})
		}
		if !c.observed {
			continue
		}
		for _, y := range []int{year - 1, year, year + 1} {
			if checkYear(y) != nil {
				continue
			}
			actual, observed := rule.Calc(y)
			if observed.IsZero() || sameDay(actual, observed) || observed.Year() != year {
				continue
			}
			out = append(out, Holiday{Name: rule.Name + observedSuffix, Date: civil(observed)})
		}
	}
	sortHolidays(out)
	return out, nil
}

// StaticCalendar serves a fixed list of holidays per year.
type StaticCalendar map[int][]Holiday

// Holidays returns the stored list for year, normalised and sorted.
func (c StaticCalendar) Holidays(year int) ([]Holiday, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}
	src := c[year]
	out := make([]Holiday, len(src))
	for i, h := range src {
		out[i] = Holiday{Name: h.Name, Date: civil(h.Date)}
	}
	sortHolidays(out)
	return out, nil
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: %d", ErrUnsupportedYear, year)
	}
	return nil
}

func sortHolidays(hs []Holiday) {
	sort.SliceStable(hs, func(a, b int) bool { return hs[a].Date.Before(hs[b].Date) })
}

// civil drops the clock and zone of t, keeping its calendar day.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
