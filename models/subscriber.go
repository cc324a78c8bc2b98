package models

import "time"

type Subscriber struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	IsActive       bool       `gorm:"not null;default:true" json:"isActive"`
	SubscribedAt   time.Time  `gorm:"not null" json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updatedAt"`
}
