package models

import "time"

// Keys of the singleton content pages
const (
	PageMission = "mission"
	PageVision  = "vision"
	PageHistory = "history"
)

// PageKeys lists every editable content page
var PageKeys = []string{PageMission, PageVision, PageHistory}

// PageContent is a singleton page such as the mission statement or the church history
type PageContent struct {
	Key       string    `json:"key" db:"page_key"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Image     *string   `json:"image,omitempty" db:"image"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PageContentInput is the validated payload of a page update
type PageContentInput struct {
	Title       string
	Content     string
	Image       *string
	RemoveImage bool
}
