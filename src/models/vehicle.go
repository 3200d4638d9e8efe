package models

import "parkspot/src/types"

type Vehicle struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Plate   string `json:"plate,omitempty"`
	Country string `json:"country,omitempty"`
	Make    string `json:"make,omitempty"`
	Model   string `json:"model,omitempty"`
	Year    uint   `json:"year,omitempty"`
	Color   string `json:"color,omitempty"`
	Chosen  bool   `gorm:"default:false" json:"chosen"`
	OwnerID uint   `json:"owner_id,omitempty"`

	Owner *User `gorm:"foreignKey:owner_id" json:"-"`

	types.Timestamps
}
