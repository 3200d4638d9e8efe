package utils

import (
	"parkspot/src/types"
	"parkspot/src/workflow"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateOfferRequiresAuth(t *testing.T) {
	body := types.CreateOfferRequestBody{
		SpotID:   1,
		StartsAt: "2030-06-01 09:00:00 +00:00",
		EndsAt:   "2030-06-01 12:00:00 +00:00",
	}
	draft, err := CreateOffer(&body, 0)
	assert.Nil(t, draft)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCreateOfferDraft(t *testing.T) {
	body := types.CreateOfferRequestBody{
		SpotID:   7,
		StartsAt: "2030-06-01 09:00:00 +00:00",
		EndsAt:   "2030-06-01 12:00:00 +00:00",
	}
	draft, err := CreateOffer(&body, 3)
	assert.Nil(t, err)
	assert.Equal(t, uint(7), draft.SpotID)
	assert.Equal(t, uint(3), draft.OwnerID)
	assert.Zero(t, draft.ID)
	assert.True(t, draft.StartsAt.Before(draft.EndsAt))
}

func TestCreateOfferRejectsInvertedWindow(t *testing.T) {
	body := types.CreateOfferRequestBody{
		SpotID:   1,
		StartsAt: "2030-06-01 12:00:00 +00:00",
		EndsAt:   "2030-06-01 09:00:00 +00:00",
	}
	_, err := CreateOffer(&body, 3)
	assert.ErrorIs(t, err, workflow.ErrInvalidWindow)
}

func TestCreateOfferRejectsMalformedDates(t *testing.T) {
	body := types.CreateOfferRequestBody{
		SpotID:   1,
		StartsAt: "2030-06-01T09:00:00Z",
		EndsAt:   "2030-06-01T12:00:00Z",
	}
	_, err := CreateOffer(&body, 3)
	assert.NotNil(t, err)
}

func TestGenerateJWT(t *testing.T) {
	token, err := GenerateJWT("driver@example.com", 42, false)
	assert.Nil(t, err)
	assert.NotEmpty(t, token)

	claims := &types.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	assert.Nil(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "driver@example.com", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, claims.Admin)
}
