package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/tally/internal/models"
)

type toggleRequest struct {
	Date string `json:"date"`
}

// ListHabits returns every habit of the session user.
func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	return getList[models.Habit](ctx, c, "/api/habits")
}

// CreateHabit creates a habit and returns the stored record.
func (c *Client) CreateHabit(ctx context.Context, def models.HabitDefinition) (models.Habit, error) {
	var h models.Habit
	err := c.do(ctx, http.MethodPost, "/api/habits", def, &h)
	return h, err
}

// UpdateHabit replaces the editable fields of a habit.
func (c *Client) UpdateHabit(ctx context.Context, id string, def models.HabitDefinition) (models.Habit, error) {
	var h models.Habit
	err := c.do(ctx, http.MethodPut, "/api/habits/"+url.PathEscape(id), def, &h)
	return h, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/habits/"+url.PathEscape(id), nil, nil)
}

// ToggleCompletion flips the completion of a habit on day (YYYY-MM-DD).
// The returned state is the backend's, not a local prediction.
func (c *Client) ToggleCompletion(ctx context.Context, id, day string) (models.ToggleResult, error) {
	var res models.ToggleResult
	err := c.do(ctx, http.MethodPost, "/api/habits/"+url.PathEscape(id)+"/toggle", toggleRequest{Date: day}, &res)
	return res, err
}
