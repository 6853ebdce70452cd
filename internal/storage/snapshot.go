package storage

import (
	"time"

	"github.com/julianstephens/tally/internal/models"
)

func SaveHabits(p Provider, habits []models.Habit, at time.Time) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	return p.Put(KindHabits, habits, len(habits), at)
}

func LoadHabits(p Provider) ([]models.Habit, time.Time, error) {
	var habits []models.Habit
	at, err := p.Get(KindHabits, &habits)
	return habits, at, err
}

func SaveContent(p Provider, vis models.Visibility, items []models.ContentItem, at time.Time) error {
	if items == nil {
		items = []models.ContentItem{}
	}
	return p.Put(ContentKind(vis), items, len(items), at)
}

func LoadContent(p Provider, vis models.Visibility) ([]models.ContentItem, time.Time, error) {
	var items []models.ContentItem
	at, err := p.Get(ContentKind(vis), &items)
	return items, at, err
}

func SaveProfile(p Provider, profile models.Profile, at time.Time) error {
	return p.Put(KindProfile, profile, 1, at)
}

func LoadProfile(p Provider) (models.Profile, time.Time, error) {
	var profile models.Profile
	at, err := p.Get(KindProfile, &profile)
	return profile, at, err
}
