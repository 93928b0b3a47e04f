package models

import "time"

// Pastor represents a pastor bio in the database
type Pastor struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Title        *string   `json:"title,omitempty" db:"title"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Photo        *string   `json:"photo,omitempty" db:"photo"`
	DisplayOrder int       `json:"displayOrder" db:"display_order"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PastorInput is the validated payload of a create or update request
type PastorInput struct {
	Name         string
	Title        *string
	Bio          *string
	Email        *string
	Photo        *string
	DisplayOrder int
	RemoveImage  bool
}
