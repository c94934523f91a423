package tracker

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var ErrInvalidQuery = errors.New("invalid query")

const FilterAll = "all"

type DateRange string

const (
	DateRangeAll        DateRange = "all"
	DateRangeLast7Days  DateRange = "last7days"
	DateRangeLast30Days DateRange = "last30days"
)

func (r DateRange) days() int {
	switch r {
	case DateRangeLast7Days:
		return 7
	case DateRangeLast30Days:
		return 30
	}
	return 0
}

type SortField string

const (
	SortByLastUpdated SortField = "lastUpdated"
	SortByAppliedDate SortField = "appliedDate"
	SortByCompany     SortField = "company"
	SortByStatus      SortField = "status"
)

func (f SortField) isDate() bool {
	return f == SortByLastUpdated || f == SortByAppliedDate
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is the search, filter and sort state of the applications list.
type Query struct {
	Search    string    `json:"searchTerm"`
	Status    string    `json:"status"`
	JobType   string    `json:"jobType"`
	DateRange DateRange `json:"dateRange"`
	SortBy    SortField `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// DefaultQuery shows everything, most recently updated first.
func DefaultQuery() Query {
	return Query{
		Status:    FilterAll,
		JobType:   FilterAll,
		DateRange: DateRangeAll,
		SortBy:    SortByLastUpdated,
		SortOrder: SortDesc,
	}
}

// ParseQuery builds a Query from raw request values. Empty values fall back
// to DefaultQuery; unknown values are rejected.
func ParseQuery(search, status, jobType, dateRange, sortBy, sortOrder string) (Query, error) {
	q := DefaultQuery()
	q.Search = strings.TrimSpace(search)

	if status != "" && status != FilterAll {
		if !models.Status(status).Valid() {
			return Query{}, fmt.Errorf("%w: status %q", ErrInvalidQuery, status)
		}
		q.Status = status
	}
	if jobType != "" && jobType != FilterAll {
		if !models.JobType(jobType).Valid() {
			return Query{}, fmt.Errorf("%w: jobType %q", ErrInvalidQuery, jobType)
		}
		q.JobType = jobType
	}
	switch r := DateRange(dateRange); r {
	case "":
	case DateRangeAll, DateRangeLast7Days, DateRangeLast30Days:
		q.DateRange = r
	default:
		return Query{}, fmt.Errorf("%w: dateRange %q", ErrInvalidQuery, dateRange)
	}
	switch f := SortField(sortBy); f {
	case "":
	case SortByLastUpdated, SortByAppliedDate, SortByCompany, SortByStatus:
		q.SortBy = f
	default:
		return Query{}, fmt.Errorf("%w: sortBy %q", ErrInvalidQuery, sortBy)
	}
	switch o := SortOrder(sortOrder); o {
	case "":
	case SortAsc, SortDesc:
		q.SortOrder = o
	default:
		return Query{}, fmt.Errorf("%w: sortOrder %q", ErrInvalidQuery, sortOrder)
	}
	return q, nil
}

// ToggleSort is the column-header click policy: the active field flips its
// order, a new field starts descending for dates and ascending otherwise.
func ToggleSort(q Query, field SortField) Query {
	if q.SortBy == field {
		if q.SortOrder == SortAsc {
			q.SortOrder = SortDesc
		} else {
			q.SortOrder = SortAsc
		}
		return q
	}
	q.SortBy = field
	if field.isDate() {
		q.SortOrder = SortDesc
	} else {
		q.SortOrder = SortAsc
	}
	return q
}

// View returns the records matching every active filter of q, ordered by
// q.SortBy. Records equal under the sort key keep their input order. The
// input slice is not modified.
func View(records []models.Application, q Query, now time.Time) []models.Application {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	today := models.NewDate(now)

	out := make([]models.Application, 0, len(records))
	for _, r := range records {
		if term != "" && !matchesSearch(r, term) {
			continue
		}
		if q.Status != "" && q.Status != FilterAll && string(r.Status) != q.Status {
			continue
		}
		if q.JobType != "" && q.JobType != FilterAll && string(r.JobType) != q.JobType {
			continue
		}
		if n := q.DateRange.days(); n > 0 && !withinDays(r.AppliedDate, today, n) {
			continue
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, compareBy(q.SortBy, q.SortOrder))
	return out
}

func matchesSearch(r models.Application, term string) bool {
	if strings.Contains(strings.ToLower(r.Company), term) ||
		strings.Contains(strings.ToLower(r.Position), term) {
		return true
	}
	for _, sk := range r.Skills {
		if strings.Contains(strings.ToLower(sk.Name), term) {
			return true
		}
	}
	return false
}

// withinDays keeps dates in [today-n, today].
func withinDays(d, today models.Date, n int) bool {
	return !d.Before(today.AddDays(-n)) && !d.After(today)
}

func compareBy(field SortField, order SortOrder) func(a, b models.Application) int {
	var key func(a, b models.Application) int
	switch field {
	case SortByAppliedDate:
		key = func(a, b models.Application) int { return a.AppliedDate.Compare(b.AppliedDate.Time) }
	case SortByCompany:
		key = func(a, b models.Application) int { return cmp.Compare(a.Company, b.Company) }
	case SortByStatus:
		key = func(a, b models.Application) int { return cmp.Compare(a.Status, b.Status) }
	default:
		key = func(a, b models.Application) int { return a.LastUpdated.Compare(b.LastUpdated.Time) }
	}
	if order == SortAsc {
		return key
	}
	return func(a, b models.Application) int { return key(b, a) }
}
