package entities

import (
	"strings"
	"time"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

type Address struct {
	City       string
	District   string
	Street     string
	PostalCode string
}

// PropertyContent is the self-contained listing snapshot carried by a
// submission and copied verbatim into the published listing.
type PropertyContent struct {
	Title           string
	Description     string
	Price           int64
	MonthlyRent     int64
	PropertyType    string
	TransactionType string
	Address         Address
	AreaSqm         float64
	Rooms           int
	Bathrooms       int
	Floor           int
	Parking         bool
	Elevator        bool
	PetsAllowed     bool
}

type Submission struct {
	SubmissionID  string
	SubmitterID   string
	Content       PropertyContent
	ImageRefs     []string
	Status        SubmissionStatus
	ReviewComment string
	ReviewedBy    string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MissingFields returns the names of required content fields that are
// empty. An empty result means the submission is acceptable for create.
func (s Submission) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(s.SubmitterID) == "" {
		missing = append(missing, "submitter_id")
	}
	if strings.TrimSpace(s.Content.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.Content.Description) == "" {
		missing = append(missing, "description")
	}
	if s.Content.Price <= 0 {
		missing = append(missing, "price")
	}
	if strings.TrimSpace(s.Content.PropertyType) == "" {
		missing = append(missing, "property_type")
	}
	if strings.TrimSpace(s.Content.TransactionType) == "" {
		missing = append(missing, "transaction_type")
	}
	if strings.TrimSpace(s.Content.Address.City) == "" {
		missing = append(missing, "address.city")
	}
	return missing
}

type ReviewAudit struct {
	AuditID      string
	SubmissionID string
	Action       string
	OldStatus    SubmissionStatus
	NewStatus    SubmissionStatus
	ActorID      string
	Comment      string
	CreatedAt    time.Time
}
