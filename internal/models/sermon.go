package models

import "time"

// Sermon represents a recorded sermon in the database
type Sermon struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Preacher   string    `json:"preacher" db:"preacher"`
	Scripture  *string   `json:"scripture,omitempty" db:"scripture"`
	SermonDate time.Time `json:"sermonDate" db:"sermon_date"`
	VideoURL   *string   `json:"videoUrl,omitempty" db:"video_url"`
	AudioURL   *string   `json:"audioUrl,omitempty" db:"audio_url"`
	Summary    *string   `json:"summary,omitempty" db:"summary"`
	Thumbnail  *string   `json:"thumbnail,omitempty" db:"thumbnail"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// SermonInput is the validated payload of a create or update request
type SermonInput struct {
	Title       string
	Preacher    string
	Scripture   *string
	SermonDate  time.Time
	VideoURL    *string
	AudioURL    *string
	Summary     *string
	Thumbnail   *string
	RemoveImage bool
}
