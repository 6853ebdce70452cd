package store

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/validation"
)

// ContentBackend is the part of the API the ContentStore uses.
type ContentBackend interface {
	ListContent(ctx context.Context, vis models.Visibility) ([]models.ContentItem, error)
	PublicFeed(ctx context.Context) ([]models.ContentItem, error)
	CreateContent(ctx context.Context, req models.CreateContentRequest) (models.ContentItem, error)
	UpdateContent(ctx context.Context, id string, req models.UpdateContentRequest) (models.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
}

var contentMessages = validation.Messages{
	"title.required": "Title is required",
	"body.required":  "Body is required",
}

// CreateOptions chooses the collection of a new item. IsDraft wins over IsPrivate.
type CreateOptions struct {
	IsDraft   bool
	IsPrivate bool
}

// Changes is an edit to an existing item. Publish only applies to drafts.
type Changes struct {
	Title   string
	Body    string
	Publish bool
}

// ContentStore owns the public, private and draft collections.
// An id is held by at most one collection at a time.
type ContentStore struct {
	backend ContentBackend

	mu    sync.RWMutex
	items map[models.Visibility][]models.ContentItem
}

func NewContentStore(backend ContentBackend) *ContentStore {
	return &ContentStore{backend: backend, items: emptyCollections()}
}

func emptyCollections() map[models.Visibility][]models.ContentItem {
	m := make(map[models.Visibility][]models.ContentItem, len(models.Visibilities))
	for _, v := range models.Visibilities {
		m[v] = []models.ContentItem{}
	}
	return m
}

// Load fetches all three collections. Nothing changes unless every fetch succeeds.
func (s *ContentStore) Load(ctx context.Context) error {
	lists := make([][]models.ContentItem, len(models.Visibilities))
	g, gctx := errgroup.WithContext(ctx)
	for i, vis := range models.Visibilities {
		i, vis := i, vis
		g.Go(func() error {
			items, err := s.backend.ListContent(gctx, vis)
			if err != nil {
				return err
			}
			lists[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.replace(lists[0], lists[1], lists[2])
	return nil
}

// Hydrate seeds the collections from cached state.
func (s *ContentStore) Hydrate(public, private, drafts []models.ContentItem) {
	s.replace(public, private, drafts)
}

// replace installs new collections, keeping the first holder of any id
// in the order public, private, draft.
func (s *ContentStore) replace(public, private, drafts []models.ContentItem) {
	next := emptyCollections()
	seen := make(map[string]models.Visibility)
	for i, list := range [][]models.ContentItem{public, private, drafts} {
		vis := models.Visibilities[i]
		for _, item := range list {
			if prev, dup := seen[item.ID]; dup {
				logger.Warn("Content item listed twice, keeping first", "id", item.ID, "kept", prev, "dropped", vis)
				continue
			}
			seen[item.ID] = vis
			next[vis] = append(next[vis], cloneItem(item))
		}
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

func (s *ContentStore) Public() []models.ContentItem  { return s.list(models.VisibilityPublic) }
func (s *ContentStore) Private() []models.ContentItem { return s.list(models.VisibilityPrivate) }
func (s *ContentStore) Drafts() []models.ContentItem  { return s.list(models.VisibilityDraft) }

func (s *ContentStore) list(vis models.Visibility) []models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContentItem, len(s.items[vis]))
	for i, item := range s.items[vis] {
		out[i] = cloneItem(item)
	}
	return out
}

// Locate reports which collection holds id.
func (s *ContentStore) Locate(id string) (models.Visibility, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vis := range models.Visibilities {
		if indexOf(s.items[vis], id) >= 0 {
			return vis, true
		}
	}
	return "", false
}

// Item returns the item with id and the collection holding it.
func (s *ContentStore) Item(id string) (models.ContentItem, models.Visibility, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vis := range models.Visibilities {
		if i := indexOf(s.items[vis], id); i >= 0 {
			return cloneItem(s.items[vis][i]), vis, true
		}
	}
	return models.ContentItem{}, "", false
}

// Create validates and creates a note, then files it newest first.
func (s *ContentStore) Create(ctx context.Context, title, body string, opts CreateOptions) (models.ContentItem, error) {
	req := models.CreateContentRequest{
		Title:     strings.TrimSpace(title),
		Body:      strings.TrimSpace(body),
		IsDraft:   opts.IsDraft,
		IsPrivate: opts.IsPrivate,
	}
	if err := validation.Struct(req, contentMessages); err != nil {
		return models.ContentItem{}, err
	}
	item, err := s.backend.CreateContent(ctx, req)
	if err != nil {
		return models.ContentItem{}, err
	}
	if ctx.Err() != nil {
		return item, ctx.Err()
	}

	dest := item.PublishedVisibility()
	if opts.IsDraft {
		dest = models.VisibilityDraft
		item.IsDraft = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileLocked(item, dest)
	return item, nil
}

// Edit changes an item's title and body within origin. A draft edit with
// Publish moves the item to the public or private collection the API reports.
func (s *ContentStore) Edit(ctx context.Context, id string, ch Changes, origin models.Visibility) (models.ContentItem, error) {
	req := models.UpdateContentRequest{
		Title: strings.TrimSpace(ch.Title),
		Body:  strings.TrimSpace(ch.Body),
	}
	if err := validation.Struct(req, contentMessages); err != nil {
		return models.ContentItem{}, err
	}
	publish := ch.Publish && origin == models.VisibilityDraft
	if publish {
		draft := false
		req.IsDraft = &draft
	}

	item, err := s.backend.UpdateContent(ctx, id, req)
	if err != nil {
		return models.ContentItem{}, err
	}
	if ctx.Err() != nil {
		return item, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if publish {
		item.IsDraft = false
		s.fileLocked(item, item.PublishedVisibility())
		return item, nil
	}
	list := s.items[origin]
	if i := indexOf(list, id); i >= 0 {
		list[i] = cloneItem(item)
	}
	return item, nil
}

// PublishDraft publishes a draft as is. On failure the draft stays where it was.
func (s *ContentStore) PublishDraft(ctx context.Context, draft models.ContentItem) (models.ContentItem, error) {
	published := false
	item, err := s.backend.UpdateContent(ctx, draft.ID, models.UpdateContentRequest{
		Title:   draft.Title,
		Body:    draft.Body,
		Labels:  draft.Labels,
		IsDraft: &published,
	})
	if err != nil {
		return models.ContentItem{}, err
	}
	if ctx.Err() != nil {
		return item, ctx.Err()
	}
	item.IsDraft = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileLocked(item, item.PublishedVisibility())
	logger.Debug("Published draft", "id", item.ID, "visibility", item.PublishedVisibility())
	return item, nil
}

// Delete removes an item through the API and then from the known collection.
// An item not held there is left alone.
func (s *ContentStore) Delete(ctx context.Context, id string, known models.Visibility) error {
	if err := s.backend.DeleteContent(ctx, id); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.items[known]
	if i := indexOf(list, id); i >= 0 {
		s.items[known] = append(list[:i], list[i+1:]...)
	}
	return nil
}

// PublicFeed returns up to limit public notes from every user. The feed is not stored.
func (s *ContentStore) PublicFeed(ctx context.Context, limit int) ([]models.ContentItem, error) {
	if limit <= 0 {
		limit = constants.PublicFeedLimit
	}
	items, err := s.backend.PublicFeed(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// fileLocked removes id from every collection and prepends item to dest.
func (s *ContentStore) fileLocked(item models.ContentItem, dest models.Visibility) {
	for _, vis := range models.Visibilities {
		list := s.items[vis]
		if i := indexOf(list, item.ID); i >= 0 {
			s.items[vis] = append(list[:i:i], list[i+1:]...)
		}
	}
	s.items[dest] = append([]models.ContentItem{cloneItem(item)}, s.items[dest]...)
}

func indexOf(list []models.ContentItem, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItem(item models.ContentItem) models.ContentItem {
	if item.Labels != nil {
		item.Labels = append([]string(nil), item.Labels...)
	}
	return item
}
