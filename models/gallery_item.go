package models

type GalleryItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"type:varchar(100);not null" json:"title"`
	Category string `gorm:"type:varchar(50);not null;index" json:"category"`
	ImageURL string `gorm:"column:image_url;type:varchar(255);not null" json:"imageUrl"`
}

func (GalleryItem) TableName() string {
	return "gallery"
}
