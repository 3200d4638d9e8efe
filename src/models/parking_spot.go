package models

import "parkspot/src/types"

type ParkingSpot struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Street      string  `json:"street,omitempty"`
	City        string  `json:"city,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Country     string  `json:"country,omitempty"`
	BayNumber   string  `json:"bay_number,omitempty"`
	Info        string  `json:"info,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	DocumentURL *string `json:"document_url,omitempty"`
	OwnerID     uint    `json:"owner_id,omitempty"`

	Owner   *User    `gorm:"foreignKey:owner_id" json:"owner,omitempty"`
	Markers []Marker `gorm:"foreignKey:spot_id" json:"markers,omitempty"`

	types.Timestamps
}
