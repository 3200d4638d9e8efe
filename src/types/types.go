package types

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Metadata map[string]any

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ReservationStatus string

const (
	RESERVATION_PENDING   ReservationStatus = "pending"
	RESERVATION_ACCEPTED  ReservationStatus = "accepted"
	RESERVATION_REJECTED  ReservationStatus = "rejected"
	RESERVATION_CANCELED  ReservationStatus = "canceled"
	RESERVATION_EXPIRED   ReservationStatus = "expired"
	RESERVATION_COMPLETED ReservationStatus = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case RESERVATION_REJECTED, RESERVATION_CANCELED, RESERVATION_EXPIRED, RESERVATION_COMPLETED:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows moving from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case RESERVATION_PENDING:
		switch next {
		case RESERVATION_ACCEPTED, RESERVATION_REJECTED, RESERVATION_CANCELED, RESERVATION_EXPIRED:
			return true
		}
	case RESERVATION_ACCEPTED:
		switch next {
		case RESERVATION_CANCELED, RESERVATION_COMPLETED:
			return true
		}
	}
	return false
}

type CreateSpotRequestBody struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
	BayNumber  string `json:"bay_number,omitempty"`
	Info       string `json:"info,omitempty"`
}

type CreateOfferRequestBody struct {
	SpotID    uint    `json:"spot" binding:"required"`
	StartsAt  string  `json:"starts_at" binding:"required,offerabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt    string  `json:"ends_at" binding:"required,offerabledate,gtdate=StartsAt" time_format:"2006-01-02 15:04:05 -07:00"`
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

type CreateReservationRequestBody struct {
	MarkerID  uint   `json:"marker" binding:"required"`
	VehicleID uint   `json:"vehicle" binding:"required"`
	StartsAt  string `json:"starts_at" binding:"required,offerabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt    string `json:"ends_at" binding:"required,offerabledate,gtdate=StartsAt" time_format:"2006-01-02 15:04:05 -07:00"`
}

type CreateVehicleRequestBody struct {
	Plate   string `json:"plate" binding:"required"`
	Country string `json:"country" binding:"required"`
	Make    string `json:"make" binding:"required"`
	Model   string `json:"model" binding:"required"`
	Year    uint   `json:"year,omitempty"`
	Color   string `json:"color,omitempty"`
}

type CreateReviewRequestBody struct {
	ReservationID uint   `json:"reservation" binding:"required"`
	Rating        uint8  `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment,omitempty"`
}

type RegisterUserRequestBody struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type MarkersQueryFilters struct {
	Owned bool `form:"owned,omitempty" binding:"omitempty"`
}

type ReservationsQueryFilters struct {
	Incoming bool `form:"incoming,omitempty" binding:"omitempty"`
}

type GeocodeQuery struct {
	Address string `form:"address" binding:"required"`
}

type Claims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
	UID      string `json:"uid"`
	jwt.RegisteredClaims
}
