// Package workflow holds the arbitration rules for offers and
// reservation requests. Everything here is pure validation over
// snapshots the caller already fetched; persistence and its guards
// live in utils.
package workflow

import (
	"errors"
	"parkspot/src/types"
	"time"
)

var (
	ErrInvalidWindow     = errors.New("window start must precede its end")
	ErrDuplicateOffer    = errors.New("you have already offered this parking spot")
	ErrOutsideOffer      = errors.New("requested window is outside the offer window")
	ErrMarkerReserved    = errors.New("this spot has already been reserved")
	ErrDuplicateRequest  = errors.New("you already have an open request for this spot")
	ErrReservationClosed = errors.New("reservation is already closed")
)

// Window is an availability interval. Start and End are inclusive
// bounds; a Window is valid only when Start strictly precedes End.
type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
}

func (w Window) Valid() bool {
	return w.StartsAt.Before(w.EndsAt)
}

// Contains reports whether other is a sub-interval of w.
func (w Window) Contains(other Window) bool {
	return !other.StartsAt.Before(w.StartsAt) && !other.EndsAt.After(w.EndsAt)
}

// Elapsed reports whether the window has fully passed at now.
func (w Window) Elapsed(now time.Time) bool {
	return w.EndsAt.Before(now)
}

// ValidateOffer checks a new offer against the duplicate-offer rule:
// a user may not hold two simultaneously active markers for one spot.
func ValidateOffer(w Window, activeOffersForSpot int64) error {
	if !w.Valid() {
		return ErrInvalidWindow
	}
	if activeOffersForSpot > 0 {
		return ErrDuplicateOffer
	}
	return nil
}

// ValidateRequest checks a reservation request against the marker it
// targets: containment, reservation state, and the one-open-request
// rule per (user, marker).
func ValidateRequest(req Window, marker Window, markerReserved bool, openRequests int64) error {
	if !req.Valid() {
		return ErrInvalidWindow
	}
	if markerReserved {
		return ErrMarkerReserved
	}
	if !marker.Contains(req) {
		return ErrOutsideOffer
	}
	if openRequests > 0 {
		return ErrDuplicateRequest
	}
	return nil
}

// ShouldComplete is the guard for the lazy Accepted -> Completed
// transition. It is safe to call repeatedly; completion is only
// signalled while the reservation is still Accepted.
func ShouldComplete(status types.ReservationStatus, endsAt time.Time, now time.Time) bool {
	return status == types.RESERVATION_ACCEPTED && endsAt.Before(now)
}

// ShouldExpireMarker is the sweeper predicate: a marker is retired
// once its window elapsed, unless an accepted reservation governs its
// remaining lifecycle.
func ShouldExpireMarker(w Window, hasAccepted bool, now time.Time) bool {
	return w.Elapsed(now) && !hasAccepted
}
