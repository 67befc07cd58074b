package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-slug"

	"hugo-directus/pkg/config"
	"hugo-directus/pkg/models"
)

var (
	ErrMissingID    = errors.New("item has no id")
	ErrMissingTitle = errors.New("item has no title")
)

// PathBuilder decides where an item is written. ResolvePath is the default;
// a custom builder fully replaces it.
type PathBuilder func(item models.Item, col models.Collection, cfg *config.Config) (models.ImportTarget, error)

// IsHome reports whether col is the singleton rendered at the content root.
func IsHome(col models.Collection, cfg *config.Config) bool {
	return col.Singleton && col.Name == cfg.Content.Home
}

// IsBranch reports whether item is the index page of a list collection.
func IsBranch(item models.Item, col models.Collection, cfg *config.Config) bool {
	if col.Singleton {
		return false
	}
	title, _ := item.Title()
	return strings.ToLower(title) == cfg.Content.Index
}

// IsPage reports whether col is a singleton other than home.
func IsPage(col models.Collection) bool {
	return col.Singleton
}

// ResolvePath classifies item as home, branch, page or leaf and returns its
// target. It does not touch the filesystem.
func ResolvePath(item models.Item, col models.Collection, cfg *config.Config) (models.ImportTarget, error) {
	root := cfg.Content.Path

	switch {
	case IsHome(col, cfg):
		return models.ImportTarget{Dir: root, IndexName: models.IndexBranch}, nil
	case IsBranch(item, col, cfg), IsPage(col):
		return models.ImportTarget{Dir: filepath.Join(root, col.Name), IndexName: models.IndexBranch}, nil
	}

	id := item.ID()
	if id == "" {
		return models.ImportTarget{}, ErrMissingID
	}
	title, _ := item.Title()
	s, err := Slugify(title)
	if err != nil {
		return models.ImportTarget{}, err
	}

	name := id + "_" + datePrefix(item) + s
	return models.ImportTarget{Dir: filepath.Join(root, col.Name, name), IndexName: models.IndexLeaf}, nil
}

// Slugify strips dots from title, transliterates it to ASCII and normalizes
// the rest into a slug. Titles differing only by dots share a slug.
func Slugify(title string) (string, error) {
	stripped := strings.TrimSpace(strings.ReplaceAll(title, ".", ""))
	if stripped == "" {
		return "", ErrMissingTitle
	}
	ascii, err := slug.HashNormalize(stripped)
	if err != nil {
		return "", fmt.Errorf("slug for %q: %w", title, err)
	}
	s, err := slug.Normalize(ascii)
	if errors.Is(err, slug.ErrEmptySlug) || (err == nil && s == "") {
		return "", fmt.Errorf("%w: %q yields an empty slug", ErrMissingTitle, title)
	}
	if err != nil {
		return "", fmt.Errorf("slug for %q: %w", title, err)
	}
	return s, nil
}

// datePrefix is "YYYY-MM-DD_" taken from date_created, or "".
func datePrefix(item models.Item) string {
	created := item.DateCreated()
	if created == "" {
		return ""
	}
	day, _, _ := strings.Cut(created, "T")
	return day + "_"
}
