package model

import "time"

// PostDomain separates the independent post collections.
type PostDomain string

const (
	PostDomainBlog     PostDomain = "blog"
	PostDomainTimeline PostDomain = "timeline"
)

// String returns the string representation of the domain.
func (d PostDomain) String() string {
	return string(d)
}

// IsValid checks whether the domain is a known value.
func (d PostDomain) IsValid() bool {
	switch d {
	case PostDomainBlog, PostDomainTimeline:
		return true
	}
	return false
}

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// String returns the string representation of the status.
func (s PostStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished:
		return true
	}
	return false
}

// Post is a blog or timeline entry. ID is generated; Slug is unique within
// Domain and is the upsert key.
type Post struct {
	ID               string     `json:"id"`
	Domain           PostDomain `json:"domain" validate:"required,oneof=blog timeline"`
	Slug             string     `json:"slug" validate:"required,max=100"`
	Title            string     `json:"title" validate:"required,max=500"`
	Excerpt          string     `json:"excerpt,omitempty" validate:"max=1000"`
	Content          string     `json:"content,omitempty"`
	FeaturedImageURL string     `json:"featured_image_url,omitempty"`
	Status           PostStatus `json:"status" validate:"required,oneof=draft published"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ApplyStatus records a status change. PublishedAt is stamped only on the
// transition into published and is kept afterwards; a post that is not
// published carries only the stored publish time. prev is the stored status
// before this save ("" for a new post).
func (p *Post) ApplyStatus(prev PostStatus, prevPublishedAt *time.Time, now time.Time) {
	if p.Status != PostStatusPublished {
		p.PublishedAt = prevPublishedAt
		return
	}
	if p.PublishedAt == nil {
		p.PublishedAt = prevPublishedAt
	}
	if p.Status == PostStatusPublished && prev != PostStatusPublished && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}

// IsPublished reports whether the post is visible to page consumers.
func (p *Post) IsPublished() bool {
	return p != nil && p.Status == PostStatusPublished
}
