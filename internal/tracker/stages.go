// Package tracker holds the application pipeline rules: stage derivation on
// status change, the filtered and sorted list view, and the application form.
package tracker

import (
	"errors"
	"fmt"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var ErrInvalidStatus = errors.New("invalid status")

// DefaultStages returns the five pipeline stages, none completed or dated.
func DefaultStages() []models.Stage {
	stages := make([]models.Stage, len(models.StageNames))
	for i, name := range models.StageNames {
		stages[i] = models.Stage{Name: name}
	}
	return stages
}

// InitialStages is the pipeline of a freshly created application: only the
// Applied stage, completed on the applied date.
func InitialStages(applied models.Date) []models.Stage {
	d := applied
	return []models.Stage{{Name: models.StageApplied, Date: &d, Completed: true}}
}

// completedThrough maps each status to how many leading stages it completes.
// Rejected is absent: a rejection freezes the pipeline where it stopped.
var completedThrough = map[models.Status]int{
	models.StatusApplied:    1,
	models.StatusInterview:  2,
	models.StatusAssessment: 3,
	models.StatusOffer:      5,
}

// DeriveStages rewrites the pipeline for a new status. Existing entries are
// matched by name so that dates, once set, are kept.
func DeriveStages(current []models.Stage, status models.Status, today models.Date) ([]models.Stage, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	stages := normalizeStages(current)
	if status == models.StatusRejected {
		return stages, nil
	}

	done := completedThrough[status]
	for i := range stages {
		st := &stages[i]
		switch {
		case i < done:
			st.Completed = true
			st.Date = dateOrToday(st.Date, today)
		case status == models.StatusApplied:
			st.Completed = false
			st.Date = nil
		case status == models.StatusInterview && st.Name == models.StageTechnicalInterview:
			st.Completed = false
			st.Date = dateOrToday(st.Date, today)
		default:
			st.Completed = false
		}
	}
	return stages, nil
}

// ApplyStatus moves app to status, rewriting its stages and stamping lastUpdated.
func ApplyStatus(app *models.Application, status models.Status, today models.Date) error {
	stages, err := DeriveStages(app.Stages, status, today)
	if err != nil {
		return err
	}
	app.Status = status
	app.Stages = stages
	app.LastUpdated = today
	return nil
}

// normalizeStages returns a fresh copy of the fixed five stages, carrying over
// the state of any entry in current with a matching name.
func normalizeStages(current []models.Stage) []models.Stage {
	byName := make(map[string]models.Stage, len(current))
	for _, st := range current {
		if _, seen := byName[st.Name]; !seen {
			byName[st.Name] = st
		}
	}

	stages := DefaultStages()
	for i := range stages {
		prev, ok := byName[stages[i].Name]
		if !ok {
			continue
		}
		stages[i].Completed = prev.Completed
		if prev.Date != nil {
			d := *prev.Date
			stages[i].Date = &d
		}
	}
	return stages
}

func dateOrToday(d *models.Date, today models.Date) *models.Date {
	if d != nil && !d.IsZero() {
		return d
	}
	t := today
	return &t
}
