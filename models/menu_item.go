package models

// MenuCategories are the only values accepted by the menu category filter.
var MenuCategories = []string{"appetizers", "main", "desserts", "drinks"}

type MenuItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string  `gorm:"type:varchar(50);not null;index" json:"category"`
	Popular     bool    `gorm:"not null;default:false" json:"popular"`
}
