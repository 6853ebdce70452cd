package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/julianstephens/tally/internal/models"
)

var contentListPaths = map[models.Visibility]string{
	models.VisibilityPublic:  "/api/posts/me",
	models.VisibilityPrivate: "/api/private/me",
	models.VisibilityDraft:   "/api/drafts/me",
}

// ListContent returns the session user's items of one visibility.
func (c *Client) ListContent(ctx context.Context, vis models.Visibility) ([]models.ContentItem, error) {
	path, ok := contentListPaths[vis]
	if !ok {
		return nil, fmt.Errorf("unknown visibility %q", vis)
	}
	return getList[models.ContentItem](ctx, c, path)
}

// PublicFeed returns public notes from all users, newest first.
func (c *Client) PublicFeed(ctx context.Context) ([]models.ContentItem, error) {
	return getList[models.ContentItem](ctx, c, "/api/posts")
}

func (c *Client) CreateContent(ctx context.Context, req models.CreateContentRequest) (models.ContentItem, error) {
	var item models.ContentItem
	err := c.do(ctx, http.MethodPost, "/api/posts", req, &item)
	return item, err
}

// UpdateContent edits an item. Setting IsDraft to false publishes a draft.
func (c *Client) UpdateContent(ctx context.Context, id string, req models.UpdateContentRequest) (models.ContentItem, error) {
	var item models.ContentItem
	err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), req, &item)
	return item, err
}

func (c *Client) DeleteContent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}
