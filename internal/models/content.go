package models

import "time"

// Visibility is the collection a content item belongs to.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityDraft   Visibility = "draft"
)

// Visibilities lists every collection in listing order.
var Visibilities = []Visibility{VisibilityPublic, VisibilityPrivate, VisibilityDraft}

// ParseVisibility accepts the collection names used on the command line.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "public", "note", "notes":
		return VisibilityPublic, true
	case "private":
		return VisibilityPrivate, true
	case "draft", "drafts":
		return VisibilityDraft, true
	}
	return "", false
}

// ContentItem is a note owned by the session user.
type ContentItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Labels    []string  `json:"labels,omitempty"`
	IsPrivate bool      `json:"is_private"`
	IsDraft   bool      `json:"is_draft"`
	CreatedAt time.Time `json:"created_at"`
	Owner     string    `json:"owner,omitempty"`
}

// PublishedVisibility is where a published item belongs according to its privacy flag.
func (c ContentItem) PublishedVisibility() Visibility {
	if c.IsPrivate {
		return VisibilityPrivate
	}
	return VisibilityPublic
}

// CreateContentRequest is the body of POST /api/posts.
type CreateContentRequest struct {
	Title     string `json:"title" validate:"required"`
	Body      string `json:"body" validate:"required"`
	IsDraft   bool   `json:"is_draft"`
	IsPrivate bool   `json:"is_private"`
}

// UpdateContentRequest is the body of PUT /api/posts/{id}.
// IsDraft is omitted unless the edit changes draft state.
type UpdateContentRequest struct {
	Title   string   `json:"title" validate:"required"`
	Body    string   `json:"body" validate:"required"`
	Labels  []string `json:"labels,omitempty"`
	IsDraft *bool    `json:"is_draft,omitempty"`
}
