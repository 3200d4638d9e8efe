package models

import (
	"parkspot/src/types"
	"time"
)

// Marker is a published, time-boxed offer of one parking spot.
// At most one non-expired Marker may exist per spot.
type Marker struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SpotID    uint      `json:"spot_id,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	StartsAt  time.Time `json:"starts_at,omitempty"`
	EndsAt    time.Time `json:"ends_at,omitempty"`
	Reserved  bool      `gorm:"default:false" json:"reserved"`
	OwnerID   uint      `json:"owner_id,omitempty"`

	Spot         *ParkingSpot  `gorm:"foreignKey:spot_id" json:"spot,omitempty"`
	Owner        *User         `gorm:"foreignKey:owner_id" json:"-"`
	Reservations []Reservation `gorm:"foreignKey:marker_id" json:"reservations,omitempty"`

	types.Timestamps
}
