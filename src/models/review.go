package models

import "parkspot/src/types"

// Review carries a unique index on (reviewer_id, reservation_id) so a
// reservation can be reviewed at most once by the same reviewer.
type Review struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	ReviewerID    uint   `gorm:"uniqueIndex:idx_reviewer_reservation" json:"reviewer_id,omitempty"`
	ReviewedID    uint   `json:"reviewed_id,omitempty"`
	ReservationID uint   `gorm:"uniqueIndex:idx_reviewer_reservation" json:"reservation_id,omitempty"`
	Rating        uint8  `json:"rating,omitempty"`
	Comment       string `json:"comment,omitempty"`

	Reviewer    *User        `gorm:"foreignKey:reviewer_id" json:"reviewer,omitempty"`
	Reviewed    *User        `gorm:"foreignKey:reviewed_id" json:"-"`
	Reservation *Reservation `gorm:"foreignKey:reservation_id" json:"-"`

	types.Timestamps
}
