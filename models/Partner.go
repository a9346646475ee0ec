package models

import "time"

// Partner is a venue or provider (hotel, restaurant, activity operator)
// featured in curated itineraries.
type Partner struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Category     string    `json:"category" gorm:"index"` // "hotel", "restaurant", "activity"
	City         string    `json:"city"`
	ContactEmail string    `json:"contactEmail"`
	Phone        string    `json:"phone"`
	Website      string    `json:"website"`
	Active       bool      `json:"active" gorm:"default:true;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
