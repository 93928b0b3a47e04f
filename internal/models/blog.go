package models

import "time"

// Blog represents a blog post in the database
type Blog struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Content       string     `json:"content" db:"content"`
	Excerpt       *string    `json:"excerpt,omitempty" db:"excerpt"`
	Author        *string    `json:"author,omitempty" db:"author"`
	Published     bool       `json:"published" db:"published"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" db:"published_at"`
	FeaturedImage *string    `json:"featuredImage,omitempty" db:"featured_image"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// BlogInput is the validated payload of a create or update request
type BlogInput struct {
	Title       string
	Slug        string
	Content     string
	Excerpt     *string
	Author      *string
	Published   bool
	PublishedAt *time.Time
	// FeaturedImage is the public URL of a freshly stored upload, if any
	FeaturedImage *string
	// RemoveImage clears the current image when no new one is given
	RemoveImage bool
}
