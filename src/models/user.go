package models

import (
	"parkspot/src/types"
)

type User struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Email     string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Admin     bool    `json:"admin,omitempty"`
	UID       string  `json:"uid,omitempty"`
	PhotoURL  *string `json:"photo_url,omitempty"`

	ParkingSpots []ParkingSpot `gorm:"foreignKey:owner_id" json:"parking_spots,omitempty"`
	Vehicles     []Vehicle     `gorm:"foreignKey:owner_id" json:"vehicles,omitempty"`
	Reviews      []Review      `gorm:"foreignKey:reviewed_id" json:"reviews,omitempty"`

	types.Timestamps
}
