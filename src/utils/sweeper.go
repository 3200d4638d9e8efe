package utils

import (
	"log"
	"parkspot/src/db"
	"parkspot/src/lib"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/workflow"
	"time"

	"gorm.io/gorm"
)

// SweepExpiredMarkers retires every marker whose window has fully
// elapsed and which no accepted reservation still governs. Pending
// requests on those markers expire first. Individual deletion
// failures are logged and skipped; the sweep never aborts.
func SweepExpiredMarkers() error {
	now := time.Now()
	db := db.GetDb()

	err := db.
		Model(&models.Reservation{}).
		Where("status = ?", types.RESERVATION_PENDING).
		Where("marker_id IN (?)", db.
			Model(&models.Marker{}).
			Select("id").
			Where("ends_at < ?", now)).
		Update("status", types.RESERVATION_EXPIRED).
		Error
	if err != nil {
		log.Printf("Error expiring stale requests: %s\n", err.Error())
		return err
	}

	var markers []models.Marker
	ss := db.Session(&gorm.Session{PrepareStmt: true})
	err = ss.
		Model(&models.Marker{}).
		Where("ends_at < ?", now).
		Preload("Reservations").
		Find(&markers).
		Error
	if err != nil {
		log.Printf("Error retrieving expired markers: %s\n", err.Error())
		return err
	}

	swept := 0
	for _, marker := range markers {
		hasAccepted := false
		for _, r := range marker.Reservations {
			if r.Status == types.RESERVATION_ACCEPTED {
				hasAccepted = true
				break
			}
		}
		w := workflow.Window{StartsAt: marker.StartsAt, EndsAt: marker.EndsAt}
		if !workflow.ShouldExpireMarker(w, hasAccepted, now) {
			continue
		}
		if err := db.Delete(&models.Marker{}, marker.ID).Error; err != nil {
			log.Printf("Failed to delete expired marker [%d]: %s\n", marker.ID, err.Error())
			continue
		}
		swept++
		go func(id uint) {
			err := lib.KafkaProduceMessage("MarkersExpiredProducer", lib.TOPIC_MARKERS_EXPIRED, map[string]any{
				"marker_id": id,
			})
			if err != nil {
				log.Printf("Error producing expiry notification: %s\n", err.Error())
			}
		}(marker.ID)
	}
	if swept > 0 {
		log.Printf("Swept %d expired markers\n", swept)
	}
	return nil
}

// CompletePastDueReservations is the bulk analog of
// CheckAndCompleteReservation, run by the periodic sweep job.
func CompletePastDueReservations() {
	db := db.GetDb()
	err := db.
		Model(&models.Reservation{}).
		Where("status = ?", types.RESERVATION_ACCEPTED).
		Where("ends_at < ?", time.Now()).
		Update("status", types.RESERVATION_COMPLETED).
		Error
	if err != nil {
		log.Printf("Error completing past-due reservations: %s\n", err.Error())
	}
}
