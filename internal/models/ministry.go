package models

import "time"

// Ministry represents a ministry of the church in the database
type Ministry struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Leader       *string   `json:"leader,omitempty" db:"leader"`
	MeetingTime  *string   `json:"meetingTime,omitempty" db:"meeting_time"`
	ContactEmail *string   `json:"contactEmail,omitempty" db:"contact_email"`
	Image        *string   `json:"image,omitempty" db:"image"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// MinistryInput is the validated payload of a create or update request
type MinistryInput struct {
	Name         string
	Description  *string
	Leader       *string
	MeetingTime  *string
	ContactEmail *string
	Image        *string
	DisplayOrder int
	RemoveImage  bool
}
