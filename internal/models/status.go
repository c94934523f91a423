package models

// Status is the pipeline state of an application.
type Status string

const (
	StatusApplied    Status = "applied"
	StatusInterview  Status = "interview"
	StatusAssessment Status = "assessment"
	StatusOffer      Status = "offer"
	StatusRejected   Status = "rejected"
)

var Statuses = []Status{StatusApplied, StatusInterview, StatusAssessment, StatusOffer, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further pipeline movement is expected.
func (s Status) Terminal() bool {
	return s == StatusOffer || s == StatusRejected
}

type JobType string

const (
	JobTypeFullTime   JobType = "Full-time"
	JobTypePartTime   JobType = "Part-time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
	JobTypeFreelance  JobType = "Freelance"
)

var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance}

func (j JobType) Valid() bool {
	for _, v := range JobTypes {
		if j == v {
			return true
		}
	}
	return false
}

// Pipeline stage names, in their fixed order.
const (
	StageApplied            = "Applied"
	StageScreening          = "Screening"
	StageTechnicalInterview = "Technical Interview"
	StageOnsite             = "Onsite"
	StageOffer              = "Offer"
)

var StageNames = []string{StageApplied, StageScreening, StageTechnicalInterview, StageOnsite, StageOffer}
