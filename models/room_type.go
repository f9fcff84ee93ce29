package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RoomType is a bookable category; physical rooms reference it.
type RoomType struct {
	gorm.Model

	Name          string          `json:"name" gorm:"uniqueIndex;type:varchar(100)"`
	Description   string          `json:"description" gorm:"type:text"`
	PricePerNight decimal.Decimal `json:"pricePerNight" gorm:"column:price_per_night;type:decimal(12,2)"`
	Currency      string          `json:"currency" gorm:"type:varchar(8);default:INR"`
	MaxGuests     int             `json:"maxGuests" gorm:"column:max_guests;default:2"`
	Amenities     datatypes.JSON  `json:"amenities,omitempty"`
	TotalRooms    int             `json:"totalRooms" gorm:"column:total_rooms;default:0"`

	Rooms []Room `json:"rooms,omitempty" gorm:"foreignKey:RoomTypeID"`
}
