// Package incident defines the domain model shared by the console client and
// the companion server: the incident record mirrored from the remote service,
// the enumerated type/priority/status values, and the drafts used by the
// create and edit forms.
package incident

import (
	"errors"
	"time"
)

// Type categorizes the kind of abnormal event at the facility.
type Type string

const (
	TypeLeak             Type = "leak"
	TypeEquipmentFailure Type = "equipment_failure"
	TypeAutomationFault  Type = "automation_fault"
	TypeGasBuildup       Type = "gas_buildup"
	TypeFireHazard       Type = "fire_hazard"
	TypeCorrosion        Type = "corrosion"
	TypeOther            Type = "other"
)

// Types lists the valid incident types in form/display order.
func Types() []Type {
	return []Type{
		TypeLeak, TypeEquipmentFailure, TypeAutomationFault,
		TypeGasBuildup, TypeFireHazard, TypeCorrosion, TypeOther,
	}
}

// IsValid checks if the type is one of the defined values.
func (t Type) IsValid() bool {
	for _, v := range Types() {
		if t == v {
			return true
		}
	}
	return false
}

func (t Type) String() string { return string(t) }

// Priority represents the urgency of an incident, ordered
// low < medium < high < critical. The ordering drives display emphasis
// only; no numeric comparison semantics are attached to it.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists the valid priorities from least to most urgent.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// IsValid checks if the priority is one of the defined values.
func (p Priority) IsValid() bool {
	for _, v := range Priorities() {
		if p == v {
			return true
		}
	}
	return false
}

func (p Priority) String() string { return string(p) }

// Status is the open/closed state of an incident.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// IsValid checks if the status is one of the defined values.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

func (s Status) String() string { return string(s) }

// Toggle returns the opposite status.
func (s Status) Toggle() Status {
	if s == StatusOpen {
		return StatusClosed
	}
	return StatusOpen
}

// UserSummary is the short creator reference attached to an incident.
type UserSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Incident is one operational abnormal event as owned by the remote
// service. The client treats every field as read-only; changes go through
// mutation calls followed by a full reload.
type Incident struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        Type         `json:"type"`
	Priority    Priority     `json:"priority"`
	Status      Status       `json:"status"`
	Location    string       `json:"location"`
	Creator     *UserSummary `json:"creator,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreatorName returns the creator's display name, or "unknown" when the
// record carries no creator reference.
func (i Incident) CreatorName() string {
	if i.Creator == nil || i.Creator.Name == "" {
		return "unknown"
	}
	return i.Creator.Name
}

// Draft holds the editable fields of an incident, used both as the create
// payload and as the edit-form buffer seeded from an existing record.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        Type     `json:"type"`
	Priority    Priority `json:"priority"`
	Location    string   `json:"location"`
}

// DraftFrom seeds an edit draft from a record's current field values.
func DraftFrom(i Incident) Draft {
	return Draft{
		Title:       i.Title,
		Description: i.Description,
		Type:        i.Type,
		Priority:    i.Priority,
		Location:    i.Location,
	}
}

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrLocationRequired = errors.New("location is required")
)

// Validate enforces required-field presence. All other validation belongs
// to the remote service.
func (d Draft) Validate() error {
	if d.Title == "" {
		return ErrTitleRequired
	}
	if d.Location == "" {
		return ErrLocationRequired
	}
	return nil
}

// Stats summarizes a raw (unfiltered) collection for the overview strip.
type Stats struct {
	Total    int
	Critical int
	High     int
	Open     int
}

// Summarize computes collection stats over the raw collection, not the
// filtered view.
func Summarize(incidents []Incident) Stats {
	var st Stats
	st.Total = len(incidents)
	for _, inc := range incidents {
		switch inc.Priority {
		case PriorityCritical:
			st.Critical++
		case PriorityHigh:
			st.High++
		}
		if inc.Status == StatusOpen {
			st.Open++
		}
	}
	return st
}
