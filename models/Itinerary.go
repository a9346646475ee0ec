package models

import (
	"time"

	"gorm.io/datatypes"
)

// Itinerary is a curated experience package shown on the public site and
// attachable to a custom experience request by an admin.
type Itinerary struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	City        string         `json:"city" gorm:"index"`
	Zone        string         `json:"zone"` // "center", "outskirts"
	Type        string         `json:"type"` // same values as CustomExperience.ItineraryType
	PriceTier   string         `json:"priceTier"`
	Price       float64        `json:"price"`
	Photos      datatypes.JSON `json:"photos"`
	PartnerID   *uint          `json:"partnerID"`
	Partner     *Partner       `json:"partner,omitempty" gorm:"foreignKey:PartnerID"`
	Published   bool           `json:"published" gorm:"default:false;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
