package workflow

import (
	"parkspot/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func window(startOffset, endOffset time.Duration) Window {
	return Window{StartsAt: t0.Add(startOffset), EndsAt: t0.Add(endOffset)}
}

func TestWindowValidity(t *testing.T) {
	assert.True(t, window(0, time.Hour).Valid())
	assert.False(t, window(time.Hour, 0).Valid())
	assert.False(t, window(0, 0).Valid())
}

func TestValidateOffer(t *testing.T) {
	assert.Nil(t, ValidateOffer(window(0, 2*time.Hour), 0))
	assert.ErrorIs(t, ValidateOffer(window(2*time.Hour, 0), 0), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateOffer(window(0, 2*time.Hour), 1), ErrDuplicateOffer)
}

func TestValidateRequestContainment(t *testing.T) {
	marker := window(0, 4*time.Hour)

	assert.Nil(t, ValidateRequest(window(time.Hour, 3*time.Hour), marker, false, 0))
	assert.Nil(t, ValidateRequest(marker, marker, false, 0))

	err := ValidateRequest(window(-time.Hour, 3*time.Hour), marker, false, 0)
	assert.ErrorIs(t, err, ErrOutsideOffer)
	err = ValidateRequest(window(time.Hour, 5*time.Hour), marker, false, 0)
	assert.ErrorIs(t, err, ErrOutsideOffer)
}

func TestValidateRequestReservedMarker(t *testing.T) {
	marker := window(0, 4*time.Hour)
	err := ValidateRequest(window(time.Hour, 2*time.Hour), marker, true, 0)
	assert.ErrorIs(t, err, ErrMarkerReserved)
}

func TestValidateRequestDuplicate(t *testing.T) {
	marker := window(0, 4*time.Hour)
	err := ValidateRequest(window(time.Hour, 2*time.Hour), marker, false, 1)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestShouldCompleteIdempotent(t *testing.T) {
	endsAt := t0.Add(2 * time.Hour)
	afterEnd := t0.Add(3 * time.Hour)

	assert.False(t, ShouldComplete(types.RESERVATION_ACCEPTED, endsAt, t0))
	assert.True(t, ShouldComplete(types.RESERVATION_ACCEPTED, endsAt, afterEnd))
	// once completed the guard stays off no matter how often it runs
	assert.False(t, ShouldComplete(types.RESERVATION_COMPLETED, endsAt, afterEnd))
	assert.False(t, ShouldComplete(types.RESERVATION_PENDING, endsAt, afterEnd))
}

func TestShouldExpireMarker(t *testing.T) {
	past := window(-4*time.Hour, -time.Hour)
	current := window(-time.Hour, time.Hour)

	assert.True(t, ShouldExpireMarker(past, false, t0))
	assert.False(t, ShouldExpireMarker(past, true, t0))
	assert.False(t, ShouldExpireMarker(current, false, t0))
}

func TestStatusMachine(t *testing.T) {
	assert.True(t, types.RESERVATION_PENDING.CanTransitionTo(types.RESERVATION_ACCEPTED))
	assert.True(t, types.RESERVATION_PENDING.CanTransitionTo(types.RESERVATION_REJECTED))
	assert.True(t, types.RESERVATION_PENDING.CanTransitionTo(types.RESERVATION_CANCELED))
	assert.True(t, types.RESERVATION_PENDING.CanTransitionTo(types.RESERVATION_EXPIRED))
	assert.True(t, types.RESERVATION_ACCEPTED.CanTransitionTo(types.RESERVATION_COMPLETED))
	assert.True(t, types.RESERVATION_ACCEPTED.CanTransitionTo(types.RESERVATION_CANCELED))

	assert.False(t, types.RESERVATION_PENDING.CanTransitionTo(types.RESERVATION_COMPLETED))
	assert.False(t, types.RESERVATION_ACCEPTED.CanTransitionTo(types.RESERVATION_REJECTED))

	for _, s := range []types.ReservationStatus{
		types.RESERVATION_REJECTED,
		types.RESERVATION_CANCELED,
		types.RESERVATION_EXPIRED,
		types.RESERVATION_COMPLETED,
	} {
		assert.True(t, s.Terminal())
		for _, next := range []types.ReservationStatus{
			types.RESERVATION_PENDING,
			types.RESERVATION_ACCEPTED,
			types.RESERVATION_COMPLETED,
		} {
			assert.Falsef(t, s.CanTransitionTo(next), "%s -> %s must be blocked", s, next)
		}
	}
}
