package database

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

func seedMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Truffle Arancini", Description: "Risotto balls with black truffle", Price: 12.95, Category: "appetizers", Popular: true},
		{Name: "Seared Scallops", Description: "With cauliflower puree and caviar", Price: 16.50, Category: "appetizers"},
		{Name: "Filet Mignon", Description: "8oz grass-fed beef, truffle mashed potatoes", Price: 34.95, Category: "main", Popular: true},
		{Name: "Wild Salmon", Description: "Pan-seared with lemon dill sauce", Price: 26.75, Category: "main"},
		{Name: "Chocolate Soufflé", Description: "With vanilla ice cream", Price: 10.50, Category: "desserts", Popular: true},
		{Name: "Crème Brûlée", Description: "Classic vanilla bean", Price: 9.25, Category: "desserts"},
		{Name: "Signature Cocktail", Description: "House special with seasonal ingredients", Price: 14.00, Category: "drinks"},
		{Name: "Wine Flight", Description: "Three 3oz pours of selected wines", Price: 18.50, Category: "drinks", Popular: true},
	}
}

func seedGallery() []models.GalleryItem {
	return []models.GalleryItem{
		{Title: "Signature Dish", Category: "food", ImageURL: "/images/gallery/item1.jpg"},
		{Title: "Dining Area", Category: "interior", ImageURL: "/images/gallery/item2.jpg"},
		{Title: "Dessert Selection", Category: "food", ImageURL: "/images/gallery/item3.avif"},
		{Title: "Wine Tasting", Category: "events", ImageURL: "/images/gallery/item4.jpg"},
		{Title: "Truffle Pasta", Category: "food", ImageURL: "/images/gallery/item5.jpg"},
		{Title: "Bar Lounge", Category: "interior", ImageURL: "/images/gallery/item6.jpg"},
		{Title: "Private Dining", Category: "events", ImageURL: "/images/gallery/item7.jpg"},
		{Title: "Seafood Platter", Category: "food", ImageURL: "/images/gallery/item8.jpg"},
	}
}

func seedSpecials(now time.Time) []models.Special {
	endOfYear := models.DateOf(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC))
	dateNight := models.DateOf(now.AddDate(0, 2, 0))
	return []models.Special{
		{
			Title:       "Weekend Brunch",
			Description: "Enjoy our signature brunch menu every Saturday & Sunday 10am-2pm",
			Discount:    "15% OFF",
			ImageURL:    "/images/specials/brunch.jpg",
			ValidUntil:  &endOfYear,
			IsActive:    true,
		},
		{
			Title:       "Date Night Package",
			Description: "3-course meal for two with wine pairing",
			Discount:    "$99",
			ImageURL:    "/images/specials/date-night.jpg",
			ValidUntil:  &dateNight,
			IsActive:    true,
		},
		{
			Title:       "Happy Hour",
			Description: "Half-price appetizers and $5 cocktails Mon-Fri 4-6pm",
			Discount:    "50% OFF",
			ImageURL:    "/images/specials/happy-hour.jpg",
			IsActive:    true,
		},
	}
}

// Seed fills the listing tables with sample content. Tables that already
// have rows are left alone.
func (s *Store) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	if err := seedTable(ctx, s, "menu_items", seedMenu()); err != nil {
		return err
	}
	if err := seedTable(ctx, s, "gallery", seedGallery()); err != nil {
		return err
	}
	return seedTable(ctx, s, "specials", seedSpecials(now))
}

func seedTable[T any](ctx context.Context, s *Store, table string, rows []T) error {
	var count int64
	if err := s.Query(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if count > 0 {
		return nil
	}
	if err := s.Create(ctx, &rows); err != nil {
		return fmt.Errorf("seed %s: %w", table, err)
	}
	utils.InfoLogger.Printf("Seeded %d rows into %s", len(rows), table)
	return nil
}
