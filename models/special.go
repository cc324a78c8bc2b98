package models

import "time"

type Special struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Discount    string    `gorm:"type:varchar(50)" json:"discount"`
	ImageURL    string    `gorm:"column:image_url;type:varchar(255)" json:"imageUrl"`
	ValidUntil  *Date     `gorm:"type:date" json:"validUntil,omitempty"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}
