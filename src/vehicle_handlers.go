package main

import (
	"errors"
	"net/http"
	"parkspot/src/db"
	"parkspot/src/models"
	"parkspot/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errDeleteVehicleInUse = errors.New("deleting a vehicle with an open reservation is not allowed")

func vehicleHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/vehicles", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var vehicles []models.Vehicle
			if err := db.
				Model(&models.Vehicle{}).
				Where(&models.Vehicle{OwnerID: ownerId}).
				Order("created_at desc").
				Find(&vehicles).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": vehicles, "count": len(vehicles)})
		}).
		POST("/vehicles", func(ctx *gin.Context) {
			var body types.CreateVehicleRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			vehicle := models.Vehicle{
				Plate:   body.Plate,
				Country: body.Country,
				Make:    body.Make,
				Model:   body.Model,
				Year:    body.Year,
				Color:   body.Color,
				OwnerID: ownerId,
			}
			db := db.GetDb()
			if err := db.Create(&vehicle).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": vehicle.ID})
		}).
		DELETE("/vehicles/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var vehicle models.Vehicle
				if err := tx.
					Where(&models.Vehicle{ID: params.ID, OwnerID: ownerId}).
					First(&vehicle).
					Error; err != nil {
					return err
				}
				var open int64
				if err := tx.
					Model(&models.Reservation{}).
					Where(&models.Reservation{VehicleID: params.ID}).
					Where("status IN (?)", []types.ReservationStatus{
						types.RESERVATION_PENDING,
						types.RESERVATION_ACCEPTED,
					}).
					Count(&open).
					Error; err != nil {
					return err
				}
				if open > 0 {
					return errDeleteVehicleInUse
				}
				return tx.Delete(&models.Vehicle{}, params.ID).Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
