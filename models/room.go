package models

import (
	"gorm.io/gorm"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusReserved    = "reserved"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusCleaning    = "cleaning"
)

// Room is one physical unit of a RoomType.
type Room struct {
	gorm.Model

	RoomTypeID uint   `json:"roomTypeId" gorm:"column:room_type_id;index"`
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50)"`
	Floor      string `json:"floor" gorm:"type:varchar(10)"`
	Status     string `json:"status" gorm:"type:varchar(32);default:available;index"`

	AvailableForBooking bool `json:"availableForBooking" gorm:"column:available_for_booking;default:true"`

	RoomType RoomType `json:"roomType,omitempty" gorm:"foreignKey:RoomTypeID"`
}
