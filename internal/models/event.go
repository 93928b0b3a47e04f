package models

import "time"

// Event represents a church event in the database
type Event struct {
	ID              int64      `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Location        *string    `json:"location,omitempty" db:"location"`
	StartDate       time.Time  `json:"startDate" db:"start_date"`
	EndDate         *time.Time `json:"endDate,omitempty" db:"end_date"`
	RegistrationURL *string    `json:"registrationUrl,omitempty" db:"registration_url"`
	Image           *string    `json:"image,omitempty" db:"image"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// EventInput is the validated payload of a create or update request
type EventInput struct {
	Title           string
	Description     *string
	Location        *string
	StartDate       time.Time
	EndDate         *time.Time
	RegistrationURL *string
	Image           *string
	RemoveImage     bool
}
