package models

import (
	"parkspot/src/types"
	"time"
)

type Reservation struct {
	ID        uint                    `gorm:"primarykey" json:"id"`
	MarkerID  uint                    `json:"marker_id,omitempty"`
	VehicleID uint                    `json:"vehicle_id,omitempty"`
	UserID    uint                    `json:"user_id,omitempty"`
	StartsAt  time.Time               `json:"starts_at,omitempty"`
	EndsAt    time.Time               `json:"ends_at,omitempty"`
	Status    types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Marker  *Marker  `gorm:"foreignKey:marker_id" json:"marker,omitempty"`
	Vehicle *Vehicle `gorm:"foreignKey:vehicle_id" json:"vehicle,omitempty"`
	User    *User    `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
