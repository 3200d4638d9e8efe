package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"parkspot/src/db"
	"parkspot/src/lib"
	"parkspot/src/models"
	"parkspot/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AccountProfile struct {
	User        models.User `json:"user"`
	Rating      float64     `json:"rating"`
	ReviewCount int64       `json:"review_count"`
}

// GetAccountProfile returns the user row with the rating aggregate
// computed from received reviews.
func GetAccountProfile(userId uint) (*AccountProfile, int, error) {
	db := db.GetDb()
	var user models.User
	if err := db.
		Model(&models.User{}).
		Where(&models.User{ID: userId}).
		Preload("ParkingSpots").
		Preload("Vehicles").
		First(&user).
		Error; err != nil {
		return nil, http.StatusNotFound, err
	}
	profile := AccountProfile{User: user}
	row := db.
		Model(&models.Review{}).
		Where(&models.Review{ReviewedID: userId}).
		Select("COALESCE(AVG(rating), 0) as rating, COUNT(id) as review_count").
		Row()
	if err := row.Scan(&profile.Rating, &profile.ReviewCount); err != nil {
		log.Printf("Error computing rating for user [%d]: %s\n", userId, err.Error())
	}
	return &profile, http.StatusOK, nil
}

// DeleteAccount removes the user and everything they own. Open
// reservations on either side are closed first in the same
// transaction; terminal ones survive as records on other users'
// markers.
func DeleteAccount(ctx *gin.Context, userId uint) (int, error) {
	db := db.GetDb()
	var user models.User
	if err := db.
		Where(&models.User{ID: userId}).
		First(&user).
		Error; err != nil {
		return http.StatusNotFound, err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := utils.CloseOpenReservations(tx, userId); err != nil {
			return err
		}
		if err := tx.
			Where("owner_id = ?", userId).
			Delete(&models.Marker{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("owner_id = ?", userId).
			Delete(&models.ParkingSpot{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("owner_id = ?", userId).
			Delete(&models.Vehicle{}).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, userId).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error deleting account [%d]: %s\n", userId, err.Error())
		return http.StatusUnprocessableEntity, err
	}

	auth, err := lib.GetFirebaseAuth()
	if err == nil {
		if err := auth.DeleteUser(context.Background(), user.UID); err != nil {
			log.Printf("Error deleting Firebase user [%s]: %s\n", user.UID, err.Error())
		}
	}
	rd := lib.GetRedisClient()
	if rd != nil {
		rd.Del(ctx, fmt.Sprintf("%d:user", userId))
	}
	return http.StatusNoContent, nil
}
