package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/models"
)

// CatalogService serves the read-only listings: menu, gallery and specials.
type CatalogService struct {
	store *database.Store
	loc   *time.Location
	Now   func() time.Time
}

func NewCatalogService(store *database.Store, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{store: store, loc: loc, Now: time.Now}
}

func (s *CatalogService) Menu(ctx context.Context, category string) ([]models.MenuItem, error) {
	query := "SELECT * FROM menu_items"
	var args []interface{}
	if c := normalizeCategory(category); c != "" {
		if !slices.Contains(models.MenuCategories, c) {
			return nil, newValidationError("Invalid category",
				"Category must be one of: "+strings.Join(models.MenuCategories, ", "))
		}
		query += " WHERE category = ?"
		args = append(args, c)
	}
	query += " ORDER BY category, id"

	items := []models.MenuItem{}
	if err := s.store.Query(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	return items, nil
}

func (s *CatalogService) Gallery(ctx context.Context, category string) ([]models.GalleryItem, error) {
	query := "SELECT * FROM gallery"
	var args []interface{}
	if c := normalizeCategory(category); c != "" {
		query += " WHERE category = ?"
		args = append(args, c)
	}
	query += " ORDER BY id ASC"

	items := []models.GalleryItem{}
	if err := s.store.Query(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("fetch gallery: %w", err)
	}
	return items, nil
}

// Specials returns active specials that have not expired, newest first.
// A NULL valid_until means the special is ongoing.
func (s *CatalogService) Specials(ctx context.Context) ([]models.Special, error) {
	today := models.DateOf(s.Now().In(s.loc))

	items := []models.Special{}
	err := s.store.Query(ctx, &items,
		"SELECT * FROM specials WHERE is_active = ? AND (valid_until IS NULL OR valid_until >= ?) ORDER BY created_at DESC, id DESC",
		true, today)
	if err != nil {
		return nil, fmt.Errorf("fetch specials: %w", err)
	}
	return items, nil
}

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "all" {
		return ""
	}
	return c
}
