package model

import "time"

// ContentRecord is the content of one page, keyed by PageKey.
type ContentRecord struct {
	PageKey          string    `json:"page_key" validate:"required,max=100"`
	Title            string    `json:"title" validate:"max=500"`
	Subtitle         string    `json:"subtitle" validate:"max=1000"`
	Content          string    `json:"content"`
	MetaTitle        string    `json:"meta_title" validate:"max=200"`
	MetaDescription  string    `json:"meta_description" validate:"max=500"`
	FeaturedImageURL string    `json:"featured_image_url" validate:"omitempty,url|startswith=/"`
	ButtonText       string    `json:"button_text" validate:"max=100"`
	ButtonURL        string    `json:"button_url" validate:"omitempty,url|startswith=/|startswith=#"`
	IsPublished      bool      `json:"is_published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Content field names, as used in the API and in legacy cache keys.
const (
	FieldTitle            = "title"
	FieldSubtitle         = "subtitle"
	FieldContent          = "content"
	FieldMetaTitle        = "meta_title"
	FieldMetaDescription  = "meta_description"
	FieldFeaturedImageURL = "featured_image_url"
	FieldButtonText       = "button_text"
	FieldButtonURL        = "button_url"
)

// ContentFields lists every text field of a ContentRecord in display order.
var ContentFields = []string{
	FieldTitle,
	FieldSubtitle,
	FieldContent,
	FieldMetaTitle,
	FieldMetaDescription,
	FieldFeaturedImageURL,
	FieldButtonText,
	FieldButtonURL,
}

// Well-known page keys.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageContact  = "contact"
	PageServices = "services"
)

// Field returns the named text field, or "" for an unknown name.
func (c *ContentRecord) Field(name string) string {
	if c == nil {
		return ""
	}
	if p := c.fieldPtr(name); p != nil {
		return *p
	}
	return ""
}

// SetField sets the named text field. It reports false for an unknown name.
func (c *ContentRecord) SetField(name, value string) bool {
	p := c.fieldPtr(name)
	if p == nil {
		return false
	}
	*p = value
	return true
}

func (c *ContentRecord) fieldPtr(name string) *string {
	switch name {
	case FieldTitle:
		return &c.Title
	case FieldSubtitle:
		return &c.Subtitle
	case FieldContent:
		return &c.Content
	case FieldMetaTitle:
		return &c.MetaTitle
	case FieldMetaDescription:
		return &c.MetaDescription
	case FieldFeaturedImageURL:
		return &c.FeaturedImageURL
	case FieldButtonText:
		return &c.ButtonText
	case FieldButtonURL:
		return &c.ButtonURL
	}
	return nil
}
