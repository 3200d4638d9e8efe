package utils

import (
	"errors"
	"fmt"
	"log"
	"os"
	"parkspot/src/config"
	"parkspot/src/db"
	"parkspot/src/lib"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/workflow"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrNotPermitted     = errors.New("not enough permissions to perform this action")
)

// CreateOffer builds a marker draft from the request body without
// touching the store. The UI collects spot and window first, the
// position afterwards; PlaceMarkerAt performs the single write.
func CreateOffer(params *types.CreateOfferRequestBody, ownerId uint) (*models.Marker, error) {
	if ownerId == 0 {
		return nil, ErrNotAuthenticated
	}
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		log.Printf("Error parsing starts_at: %s\n", err.Error())
		return nil, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		log.Printf("Error parsing ends_at: %s\n", err.Error())
		return nil, err
	}
	w := workflow.Window{StartsAt: startsAt, EndsAt: endsAt}
	if !w.Valid() {
		return nil, workflow.ErrInvalidWindow
	}
	marker := models.Marker{
		SpotID:   params.SpotID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		OwnerID:  ownerId,
	}
	return &marker, nil
}

// PlaceMarkerAt finalizes a drafted offer with its map position and
// persists it. The duplicate-offer rule is checked inside the
// transaction so two racing offers for the same spot cannot both land.
func PlaceMarkerAt(draft *models.Marker, latitude float64, longitude float64) (uint, error) {
	draft.Latitude = latitude
	draft.Longitude = longitude

	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var spot models.ParkingSpot
		if err := tx.
			Where(&models.ParkingSpot{ID: draft.SpotID}).
			First(&spot).
			Error; err != nil {
			return ErrNotFound
		}
		if spot.OwnerID != draft.OwnerID {
			return ErrNotPermitted
		}
		var active int64
		if err := tx.
			Model(&models.Marker{}).
			Where(&models.Marker{SpotID: draft.SpotID}).
			Where("ends_at > ?", time.Now()).
			Count(&active).
			Error; err != nil {
			return err
		}
		if err := workflow.ValidateOffer(workflow.Window{StartsAt: draft.StartsAt, EndsAt: draft.EndsAt}, active); err != nil {
			return err
		}
		if err := tx.Create(draft).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("PlaceMarkerAt failed: %s\n", err.Error())
		return 0, err
	}
	return draft.ID, nil
}

// ListActiveOffers returns every non-expired marker, optionally
// filtered to one owner. Expired markers are swept first so stale
// offers never reach the map.
func ListActiveOffers(ownerId *uint) ([]models.Marker, error) {
	if err := SweepExpiredMarkers(); err != nil {
		log.Printf("Sweep before listing failed: %s\n", err.Error())
	}
	var markers []models.Marker
	db := db.GetDb()
	q := db.
		Model(&models.Marker{}).
		Where("ends_at > ?", time.Now()).
		Preload("Spot").
		Order("starts_at asc")
	if ownerId != nil {
		q = q.Where(&models.Marker{OwnerID: *ownerId})
	}
	err := q.Find(&markers).Error
	return markers, err
}

// RetractOffer removes a marker outright on the owner-cancel path.
// Not permitted once a reservation against it is accepted or
// completed; remaining pending requests are rejected in the same
// transaction.
func RetractOffer(markerId uint, ownerId uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var marker models.Marker
		if err := tx.
			Where(&models.Marker{ID: markerId}).
			First(&marker).
			Error; err != nil {
			return ErrNotFound
		}
		if marker.OwnerID != ownerId {
			return ErrNotPermitted
		}
		var claimed int64
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{MarkerID: markerId}).
			Where("status IN (?)", []types.ReservationStatus{
				types.RESERVATION_ACCEPTED,
				types.RESERVATION_COMPLETED,
			}).
			Count(&claimed).
			Error; err != nil {
			return err
		}
		if claimed > 0 {
			return errors.New("retracting an offer with an accepted reservation is not allowed")
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{MarkerID: markerId, Status: types.RESERVATION_PENDING}).
			Update("status", types.RESERVATION_REJECTED).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Marker{}, markerId).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("RetractOffer failed: %s\n", err.Error())
	}
	return err
}

// SubmitRequest creates a pending reservation against a marker. The
// requested window must sit inside the marker window, the marker must
// still be free, and the requester may hold only one open request per
// marker. The chosen vehicle is flagged for the active reservation.
func SubmitRequest(params *types.CreateReservationRequestBody, userId uint) (uint, error) {
	if userId == 0 {
		return 0, ErrNotAuthenticated
	}
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		return 0, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		return 0, err
	}
	reservation := models.Reservation{
		MarkerID:  params.MarkerID,
		VehicleID: params.VehicleID,
		UserID:    userId,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
		Status:    types.RESERVATION_PENDING,
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var marker models.Marker
		if err := tx.
			Where(&models.Marker{ID: params.MarkerID}).
			First(&marker).
			Error; err != nil {
			return ErrNotFound
		}
		if marker.OwnerID == userId {
			return errors.New("requesting your own offer is not allowed")
		}
		var vehicle models.Vehicle
		if err := tx.
			Where(&models.Vehicle{ID: params.VehicleID}).
			First(&vehicle).
			Error; err != nil {
			return ErrNotFound
		}
		if vehicle.OwnerID != userId {
			return ErrNotPermitted
		}
		var open int64
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{MarkerID: params.MarkerID, UserID: userId}).
			Where("status IN (?)", []types.ReservationStatus{
				types.RESERVATION_PENDING,
				types.RESERVATION_ACCEPTED,
			}).
			Count(&open).
			Error; err != nil {
			return err
		}
		if err := workflow.ValidateRequest(
			workflow.Window{StartsAt: startsAt, EndsAt: endsAt},
			workflow.Window{StartsAt: marker.StartsAt, EndsAt: marker.EndsAt},
			marker.Reserved,
			open,
		); err != nil {
			return err
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Vehicle{}).
			Where(&models.Vehicle{ID: params.VehicleID}).
			Update("chosen", true).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("SubmitRequest failed: %s\n", err.Error())
		return 0, err
	}
	return reservation.ID, nil
}

// AcceptRequest transitions one pending reservation to accepted. The
// marker flag is flipped with a conditional write so concurrent
// accepts on the same marker cannot both win, and every other pending
// request on the marker is rejected within the same transaction.
func AcceptRequest(reservationId uint, ownerId uint) error {
	db := db.GetDb()
	var accepted models.Reservation
	err := db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Where(&models.Reservation{ID: reservationId}).
			Preload("Marker").
			First(&reservation).
			Error; err != nil {
			return ErrNotFound
		}
		if reservation.Marker == nil || reservation.Marker.OwnerID != ownerId {
			return ErrNotPermitted
		}
		if reservation.Status != types.RESERVATION_PENDING {
			return workflow.ErrReservationClosed
		}
		res := tx.
			Model(&models.Marker{}).
			Where("id = ? AND reserved = ?", reservation.MarkerID, false).
			Update("reserved", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrMarkerReserved
		}
		res = tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_PENDING}).
			Update("status", types.RESERVATION_ACCEPTED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrReservationClosed
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{MarkerID: reservation.MarkerID, Status: types.RESERVATION_PENDING}).
			Where("id <> ?", reservationId).
			Update("status", types.RESERVATION_REJECTED).
			Error; err != nil {
			return err
		}
		accepted = reservation
		return nil
	})
	if err != nil {
		log.Printf("AcceptRequest failed: %s\n", err.Error())
		return err
	}
	go func() {
		err := lib.KafkaProduceMessage("ReservationsAcceptedProducer", lib.TOPIC_RESERVATIONS_ACCEPTED, map[string]any{
			"reservation_id": reservationId,
			"marker_id":      accepted.MarkerID,
			"user_id":        accepted.UserID,
		})
		if err != nil {
			log.Printf("Error producing accept notification: %s\n", err.Error())
		}
	}()
	return nil
}

// RejectRequest transitions a pending reservation to rejected.
func RejectRequest(reservationId uint, ownerId uint) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Where(&models.Reservation{ID: reservationId}).
			Preload("Marker").
			First(&reservation).
			Error; err != nil {
			return ErrNotFound
		}
		if reservation.Marker == nil || reservation.Marker.OwnerID != ownerId {
			return ErrNotPermitted
		}
		res := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: reservationId, Status: types.RESERVATION_PENDING}).
			Update("status", types.RESERVATION_REJECTED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrReservationClosed
		}
		return nil
	})
}

// CancelReservation is the requester-side exit from pending or
// accepted. Cancelling the accepted reservation releases the marker,
// and the vehicle loses its chosen flag either way.
func CancelReservation(reservationId uint, userId uint) error {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Where(&models.Reservation{ID: reservationId}).
			First(&reservation).
			Error; err != nil {
			return ErrNotFound
		}
		if reservation.UserID != userId {
			return ErrNotPermitted
		}
		if !reservation.Status.CanTransitionTo(types.RESERVATION_CANCELED) {
			return workflow.ErrReservationClosed
		}
		wasAccepted := reservation.Status == types.RESERVATION_ACCEPTED
		res := tx.
			Model(&models.Reservation{}).
			Where("id = ? AND status IN (?)", reservationId, []types.ReservationStatus{
				types.RESERVATION_PENDING,
				types.RESERVATION_ACCEPTED,
			}).
			Update("status", types.RESERVATION_CANCELED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workflow.ErrReservationClosed
		}
		if wasAccepted {
			if err := tx.
				Model(&models.Marker{}).
				Where(&models.Marker{ID: reservation.MarkerID}).
				Update("reserved", false).
				Error; err != nil {
				return err
			}
		}
		if err := tx.
			Model(&models.Vehicle{}).
			Where(&models.Vehicle{ID: reservation.VehicleID}).
			Update("chosen", false).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("CancelReservation failed: %s\n", err.Error())
	}
	return err
}

// CloseOpenReservations terminates every open reservation the user is
// party to, inside the caller's transaction: held reservations are
// canceled (releasing the marker an accepted one was holding) and
// requests on the user's own markers are rejected. Account deletion
// runs this before removing the user's rows.
func CloseOpenReservations(tx *gorm.DB, userId uint) error {
	open := []types.ReservationStatus{
		types.RESERVATION_PENDING,
		types.RESERVATION_ACCEPTED,
	}
	if err := tx.
		Model(&models.Marker{}).
		Where("id IN (?)", tx.
			Model(&models.Reservation{}).
			Select("marker_id").
			Where("user_id = ? AND status = ?", userId, types.RESERVATION_ACCEPTED)).
		Update("reserved", false).
		Error; err != nil {
		return err
	}
	if err := tx.
		Model(&models.Reservation{}).
		Where("user_id = ?", userId).
		Where("status IN (?)", open).
		Update("status", types.RESERVATION_CANCELED).
		Error; err != nil {
		return err
	}
	if err := tx.
		Model(&models.Reservation{}).
		Where("marker_id IN (?)", tx.
			Model(&models.Marker{}).
			Select("id").
			Where("owner_id = ?", userId)).
		Where("status IN (?)", open).
		Update("status", types.RESERVATION_REJECTED).
		Error; err != nil {
		return err
	}
	return nil
}

// CheckAndCompleteReservation lazily finishes an accepted reservation
// once its window has passed. Idempotent: the guarded update is a
// no-op when another caller already completed it.
func CheckAndCompleteReservation(reservation *models.Reservation) error {
	if !workflow.ShouldComplete(reservation.Status, reservation.EndsAt, time.Now()) {
		return nil
	}
	db := db.GetDb()
	res := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{ID: reservation.ID, Status: types.RESERVATION_ACCEPTED}).
		Update("status", types.RESERVATION_COMPLETED)
	if res.Error != nil {
		return res.Error
	}
	reservation.Status = types.RESERVATION_COMPLETED
	if res.RowsAffected == 0 {
		return nil
	}
	go func() {
		err := lib.KafkaProduceMessage("ReservationsCompletedProducer", lib.TOPIC_RESERVATIONS_DONE, map[string]any{
			"reservation_id": reservation.ID,
		})
		if err != nil {
			log.Printf("Error producing completion notification: %s\n", err.Error())
		}
	}()
	return nil
}

// HasBeenReviewed gates the feedback prompt: at most one review per
// (reviewer, reservation) pair.
func HasBeenReviewed(reservationId uint, reviewerId uint) (bool, error) {
	var count int64
	db := db.GetDb()
	err := db.
		Model(&models.Review{}).
		Where(&models.Review{ReservationID: reservationId, ReviewerID: reviewerId}).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddReview records feedback on a completed reservation. Either party
// may review the other; the unique index on (reviewer_id,
// reservation_id) backstops the client-side existence check. The
// sweep retires the marker once the reservation completed, so the
// counterparty lookup reads it unscoped.
func AddReview(params *types.CreateReviewRequestBody, reviewerId uint) (uint, error) {
	if reviewerId == 0 {
		return 0, ErrNotAuthenticated
	}
	review := models.Review{
		ReviewerID:    reviewerId,
		ReservationID: params.ReservationID,
		Rating:        params.Rating,
		Comment:       params.Comment,
	}
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.
			Where(&models.Reservation{ID: params.ReservationID}).
			Preload("Marker", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
			First(&reservation).
			Error; err != nil {
			return ErrNotFound
		}
		if reservation.Status != types.RESERVATION_COMPLETED {
			return errors.New("only completed reservations can be reviewed")
		}
		if reservation.Marker == nil {
			return ErrNotFound
		}
		switch reviewerId {
		case reservation.UserID:
			review.ReviewedID = reservation.Marker.OwnerID
		case reservation.Marker.OwnerID:
			review.ReviewedID = reservation.UserID
		default:
			return ErrNotPermitted
		}
		var count int64
		if err := tx.
			Model(&models.Review{}).
			Where(&models.Review{ReservationID: params.ReservationID, ReviewerID: reviewerId}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("you have already reviewed this reservation")
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("AddReview failed: %s\n", err.Error())
		return 0, err
	}
	return review.ID, nil
}

// GetOwnReservations returns the requester's reservations, newest
// first, after running the lazy completion check on each.
func GetOwnReservations(userId uint) ([]models.Reservation, error) {
	db := db.GetDb()
	var reservations []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Where(&models.Reservation{UserID: userId}).
		Preload("Marker").
		Preload("Marker.Spot").
		Preload("Vehicle").
		Order("created_at DESC").
		Limit(50).
		Find(&reservations).
		Error
	if err != nil {
		return nil, err
	}
	for i := range reservations {
		if err := CheckAndCompleteReservation(&reservations[i]); err != nil {
			log.Printf("Completion check failed for reservation [%d]: %s\n", reservations[i].ID, err.Error())
		}
	}
	return reservations, nil
}

// GetIncomingRequests returns reservations targeting the owner's
// markers, pending ones first.
func GetIncomingRequests(ownerId uint) ([]models.Reservation, error) {
	db := db.GetDb()
	var reservations []models.Reservation
	err := db.
		Model(&models.Reservation{}).
		Joins("JOIN markers ON markers.id = reservations.marker_id").
		Where("markers.owner_id = ?", ownerId).
		Preload("Marker").
		Preload("User").
		Preload("Vehicle").
		Order("reservations.status = 'pending' DESC, reservations.created_at DESC").
		Find(&reservations).
		Error
	return reservations, err
}

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, id uint, admin bool) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &types.Claims{
		Username: email,
		Admin:    admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(id),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func IsProd() bool {
	return config.API_ENV == "production"
}
