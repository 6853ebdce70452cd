package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/storagetest"
)

func TestJSONStore(t *testing.T) {
	storagetest.Run(t, func(path string) storage.Provider {
		return storage.NewJSONStore(path)
	})
}

func TestJSONStoreRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "snapshots": {}}`), 0600); err != nil {
		t.Fatal(err)
	}
	err := storage.NewJSONStore(path).Init()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Init() error = %v, want version error", err)
	}
}

func TestContentKind(t *testing.T) {
	tests := []struct {
		vis  string
		want storage.Kind
	}{
		{"public", storage.KindPublic},
		{"private", storage.KindPrivate},
		{"draft", storage.KindDrafts},
	}
	for _, tt := range tests {
		t.Run(tt.vis, func(t *testing.T) {
			if got := storage.ContentKind(models.Visibility(tt.vis)); got != tt.want {
				t.Errorf("ContentKind(%q) = %q, want %q", tt.vis, got, tt.want)
			}
		})
	}
}
