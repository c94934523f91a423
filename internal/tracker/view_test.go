package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

func app(t *testing.T, id, company string, status models.Status, applied string) models.Application {
	t.Helper()
	d := mustDate(t, applied)
	return models.Application{
		ID:          id,
		Company:     company,
		Position:    "Engineer",
		Status:      status,
		JobType:     models.JobTypeFullTime,
		AppliedDate: d,
		LastUpdated: d,
	}
}

func ids(apps []models.Application) []string {
	out := make([]string, len(apps))
	for i, a := range apps {
		out[i] = a.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestViewStatusFilter(t *testing.T) {
	records := []models.Application{
		app(t, "1", "Acme", models.StatusApplied, "2024-01-01"),
		app(t, "2", "Globex", models.StatusInterview, "2024-02-01"),
	}
	q := DefaultQuery()
	q.Status = string(models.StatusInterview)

	got := View(records, q, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	if !equalIDs(ids(got), []string{"2"}) {
		t.Errorf("Expected [2], got %v", ids(got))
	}
}

func TestViewSearch(t *testing.T) {
	withSkill := app(t, "3", "Initech", models.StatusApplied, "2024-01-03")
	withSkill.Skills = []models.Skill{{Name: "React", Required: true}}
	records := []models.Application{
		app(t, "1", "Acme", models.StatusApplied, "2024-01-01"),
		app(t, "2", "Reactive Labs", models.StatusApplied, "2024-01-02"),
		withSkill,
	}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"react", []string{"2", "3"}},
		{"REACT", []string{"2", "3"}},
		{"  acme ", []string{"1"}},
		{"engineer", []string{"1", "2", "3"}},
		{"cobol", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			q := DefaultQuery()
			q.Search = tt.term
			q.SortBy = SortByAppliedDate
			q.SortOrder = SortAsc
			got := View(records, q, now)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, ids(got))
			}
		})
	}
}

func TestViewFiltersAreConjunctive(t *testing.T) {
	contract := app(t, "2", "Globex", models.StatusInterview, "2024-02-28")
	contract.JobType = models.JobTypeContract
	records := []models.Application{
		app(t, "1", "Globex", models.StatusInterview, "2024-02-28"),
		contract,
		app(t, "3", "Globex", models.StatusInterview, "2024-01-01"),
		app(t, "4", "Acme", models.StatusInterview, "2024-02-28"),
		app(t, "5", "Globex", models.StatusApplied, "2024-02-28"),
	}
	q := Query{
		Search:    "glob",
		Status:    string(models.StatusInterview),
		JobType:   string(models.JobTypeFullTime),
		DateRange: DateRangeLast7Days,
		SortBy:    SortByCompany,
		SortOrder: SortAsc,
	}

	got := View(records, q, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	if !equalIDs(ids(got), []string{"1"}) {
		t.Errorf("Expected [1], got %v", ids(got))
	}
}

func TestViewDateRange(t *testing.T) {
	records := []models.Application{
		app(t, "today", "A", models.StatusApplied, "2024-03-31"),
		app(t, "edge7", "B", models.StatusApplied, "2024-03-24"),
		app(t, "day8", "C", models.StatusApplied, "2024-03-23"),
		app(t, "edge30", "D", models.StatusApplied, "2024-03-01"),
		app(t, "old", "E", models.StatusApplied, "2024-01-01"),
		app(t, "future", "F", models.StatusApplied, "2024-04-02"),
	}
	now := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		rng  DateRange
		want []string
	}{
		{DateRangeAll, []string{"today", "edge7", "day8", "edge30", "old", "future"}},
		{DateRangeLast7Days, []string{"today", "edge7"}},
		{DateRangeLast30Days, []string{"today", "edge7", "day8", "edge30"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.rng), func(t *testing.T) {
			q := DefaultQuery()
			q.DateRange = tt.rng
			q.SortBy = SortByCompany
			q.SortOrder = SortAsc
			got := View(records, q, now)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, ids(got))
			}
		})
	}
}

func TestViewSortOrder(t *testing.T) {
	a := app(t, "a", "beta", models.StatusOffer, "2024-01-02")
	a.LastUpdated = mustDate(t, "2024-03-01")
	b := app(t, "b", "Alpha", models.StatusApplied, "2024-01-03")
	b.LastUpdated = mustDate(t, "2024-02-01")
	c := app(t, "c", "Gamma", models.StatusInterview, "2024-01-01")
	c.LastUpdated = mustDate(t, "2024-02-15")
	records := []models.Application{a, b, c}
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		by    SortField
		order SortOrder
		want  []string
	}{
		{SortByLastUpdated, SortDesc, []string{"a", "c", "b"}},
		{SortByLastUpdated, SortAsc, []string{"b", "c", "a"}},
		{SortByAppliedDate, SortDesc, []string{"b", "a", "c"}},
		{SortByAppliedDate, SortAsc, []string{"c", "a", "b"}},
		// Byte-wise: upper case sorts before lower case.
		{SortByCompany, SortAsc, []string{"b", "c", "a"}},
		{SortByCompany, SortDesc, []string{"a", "c", "b"}},
		{SortByStatus, SortAsc, []string{"b", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by)+"_"+string(tt.order), func(t *testing.T) {
			q := DefaultQuery()
			q.SortBy = tt.by
			q.SortOrder = tt.order
			got := View(records, q, now)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, ids(got))
			}
		})
	}
}

func TestViewSortIsStable(t *testing.T) {
	records := []models.Application{
		app(t, "1", "Same", models.StatusApplied, "2024-01-01"),
		app(t, "2", "Same", models.StatusApplied, "2024-01-01"),
		app(t, "3", "Same", models.StatusApplied, "2024-01-01"),
	}
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, by := range []SortField{SortByLastUpdated, SortByAppliedDate, SortByCompany, SortByStatus} {
		for _, order := range []SortOrder{SortAsc, SortDesc} {
			q := DefaultQuery()
			q.SortBy = by
			q.SortOrder = order
			got := View(records, q, now)
			if !equalIDs(ids(got), []string{"1", "2", "3"}) {
				t.Errorf("%s %s: expected input order, got %v", by, order, ids(got))
			}
		}
	}
}

func TestViewDoesNotModifyInput(t *testing.T) {
	records := []models.Application{
		app(t, "1", "B", models.StatusApplied, "2024-01-01"),
		app(t, "2", "A", models.StatusApplied, "2024-01-02"),
	}
	q := DefaultQuery()
	q.SortBy = SortByCompany
	q.SortOrder = SortAsc

	View(records, q, time.Now())
	if records[0].ID != "1" || records[1].ID != "2" {
		t.Error("Expected input slice untouched")
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("", "", "", "", "", "")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if q != DefaultQuery() {
		t.Errorf("Expected default query, got %+v", q)
	}

	q, err = ParseQuery(" go ", "offer", "Contract", "last30days", "company", "asc")
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	want := Query{Search: "go", Status: "offer", JobType: "Contract", DateRange: DateRangeLast30Days, SortBy: SortByCompany, SortOrder: SortAsc}
	if q != want {
		t.Errorf("Expected %+v, got %+v", want, q)
	}

	invalid := [][6]string{
		{"", "ghosted", "", "", "", ""},
		{"", "", "Seasonal", "", "", ""},
		{"", "", "", "yesterday", "", ""},
		{"", "", "", "", "salary", ""},
		{"", "", "", "", "", "up"},
	}
	for _, in := range invalid {
		if _, err := ParseQuery(in[0], in[1], in[2], in[3], in[4], in[5]); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Expected ErrInvalidQuery for %v, got %v", in, err)
		}
	}
}

func TestToggleSort(t *testing.T) {
	q := DefaultQuery()

	q = ToggleSort(q, SortByLastUpdated)
	if q.SortOrder != SortAsc {
		t.Errorf("Expected same field to flip to asc, got %s", q.SortOrder)
	}
	q = ToggleSort(q, SortByLastUpdated)
	if q.SortOrder != SortDesc {
		t.Errorf("Expected same field to flip back to desc, got %s", q.SortOrder)
	}

	q = ToggleSort(q, SortByCompany)
	if q.SortBy != SortByCompany || q.SortOrder != SortAsc {
		t.Errorf("Expected company asc, got %s %s", q.SortBy, q.SortOrder)
	}
	q = ToggleSort(q, SortByAppliedDate)
	if q.SortBy != SortByAppliedDate || q.SortOrder != SortDesc {
		t.Errorf("Expected appliedDate desc, got %s %s", q.SortBy, q.SortOrder)
	}
	q = ToggleSort(q, SortByStatus)
	if q.SortOrder != SortAsc {
		t.Errorf("Expected status asc, got %s", q.SortOrder)
	}
}
