package database

import (
	"fmt"

	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

func (s *Store) AutoMigrate() error {
	err := s.db.AutoMigrate(
		&models.Booking{},
		&models.Subscriber{},
		&models.MenuItem{},
		&models.GalleryItem{},
		&models.Special{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
