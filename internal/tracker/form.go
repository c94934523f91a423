package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
)

var ErrInvalidForm = errors.New("invalid application form")

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormState is the editable state of the application form. It is a plain
// value: every update function returns a new FormState.
type FormState struct {
	Company     string         `json:"company" validate:"required,max=200"`
	Position    string         `json:"position" validate:"required,max=200"`
	Location    string         `json:"location" validate:"max=200"`
	Status      models.Status  `json:"status" validate:"omitempty,oneof=applied interview assessment offer rejected"`
	JobType     models.JobType `json:"jobType" validate:"omitempty,oneof=Full-time Part-time Contract Internship Freelance"`
	AppliedDate string         `json:"appliedDate"`
	Salary      *float64       `json:"salary" validate:"omitempty,gte=0"`
	JobURL      string         `json:"jobUrl" validate:"omitempty,url"`
	Notes       string         `json:"notes" validate:"max=10000"`
	Skills      []models.Skill `json:"skills" validate:"dive"`
}

// NewFormState returns the blank form of a new application.
func NewFormState() FormState {
	return FormState{Status: models.StatusApplied, JobType: models.JobTypeFullTime}
}

// FormFromApplication loads an existing record into the form for editing.
func FormFromApplication(app models.Application) FormState {
	f := FormState{
		Company:     app.Company,
		Position:    app.Position,
		Location:    app.Location,
		Status:      app.Status,
		JobType:     app.JobType,
		AppliedDate: app.AppliedDate.String(),
		JobURL:      app.JobURL,
		Notes:       app.Notes,
		Skills:      append([]models.Skill(nil), app.Skills...),
	}
	if app.Salary != nil {
		s := *app.Salary
		f.Salary = &s
	}
	return f
}

// SetField sets a text input by its JSON name. The salary field accepts a
// number, or an empty string to clear it.
func (f FormState) SetField(name, value string) (FormState, error) {
	switch name {
	case "company":
		f.Company = value
	case "position":
		f.Position = value
	case "location":
		f.Location = value
	case "status":
		f.Status = models.Status(value)
	case "jobType":
		f.JobType = models.JobType(value)
	case "appliedDate":
		f.AppliedDate = value
	case "jobUrl":
		f.JobURL = value
	case "notes":
		f.Notes = value
	case "salary":
		if strings.TrimSpace(value) == "" {
			f.Salary = nil
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return f, fmt.Errorf("%w: salary %q is not a number", ErrInvalidForm, value)
		}
		f.Salary = &v
	default:
		return f, fmt.Errorf("%w: unknown field %q", ErrInvalidForm, name)
	}
	return f, nil
}

// AddSkill appends a skill unless one with the same name is already listed.
func (f FormState) AddSkill(name string, required bool) FormState {
	name = strings.TrimSpace(name)
	if name == "" {
		return f
	}
	for _, sk := range f.Skills {
		if strings.EqualFold(sk.Name, name) {
			return f
		}
	}
	f.Skills = append(append([]models.Skill(nil), f.Skills...), models.Skill{Name: name, Required: required})
	return f
}

func (f FormState) RemoveSkill(name string) FormState {
	skills := make([]models.Skill, 0, len(f.Skills))
	for _, sk := range f.Skills {
		if !strings.EqualFold(sk.Name, name) {
			skills = append(skills, sk)
		}
	}
	f.Skills = skills
	return f
}

func (f FormState) ToggleSkillRequired(name string) FormState {
	skills := append([]models.Skill(nil), f.Skills...)
	for i := range skills {
		if strings.EqualFold(skills[i].Name, name) {
			skills[i].Required = !skills[i].Required
		}
	}
	f.Skills = skills
	return f
}

// Validate checks the form and converts it to an application draft. Status,
// stages and lastUpdated of the draft are left for the caller to settle.
func (f FormState) Validate() (models.Application, error) {
	f.Company = strings.TrimSpace(f.Company)
	f.Position = strings.TrimSpace(f.Position)
	f.Location = strings.TrimSpace(f.Location)
	f.JobURL = strings.TrimSpace(f.JobURL)

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return models.Application{}, fmt.Errorf("%w: %s failed %q", ErrInvalidForm, fe.Field(), fe.Tag())
		}
		return models.Application{}, fmt.Errorf("%w: %v", ErrInvalidForm, err)
	}

	app := models.Application{
		Company:  f.Company,
		Position: f.Position,
		Location: f.Location,
		Status:   f.Status,
		JobType:  f.JobType,
		Salary:   f.Salary,
		JobURL:   f.JobURL,
		Notes:    f.Notes,
		Skills:   models.NormalizeSkills(f.Skills),
	}
	if app.JobType == "" {
		app.JobType = models.JobTypeFullTime
	}
	if strings.TrimSpace(f.AppliedDate) != "" {
		d, err := models.ParseDate(f.AppliedDate)
		if err != nil {
			return models.Application{}, fmt.Errorf("%w: appliedDate: %w", ErrInvalidForm, err)
		}
		app.AppliedDate = d
	}
	return app, nil
}
