package domain

import "time"

// PostStatus is the publication state of a blog post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// IsValid reports whether s is one of the known post statuses.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostDraft, PostPublished, PostArchived:
		return true
	}
	return false
}

// Post is a blog article. Slug is unique and is the public URL handle;
// only published posts are visible outside the admin backend.
type Post struct {
	ID          string
	Title       string
	Slug        string
	Body        string
	Excerpt     string
	CoverImage  string
	Category    string
	Tags        []string
	Status      PostStatus
	AuthorID    string     // principal ID
	PublishedAt *time.Time // set on first publish, kept on re-publish
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TravelPackage is a tour offering edited through the admin backend. Slug
// is unique; only active packages appear on the public list, featured ones
// first.
type TravelPackage struct {
	ID           string
	Name         string
	Slug         string
	Destination  string
	Description  string
	DurationDays int
	PriceCents   int64  // minor units of Currency
	Currency     string // ISO 4217, e.g. "USD"
	Inclusions   []string
	Exclusions   []string
	IsFeatured   bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
