package main

import (
	"fmt"
	"net/http"
	"parkspot/src/db"
	awslib "parkspot/src/lib/aws"
	"parkspot/src/models"
	"parkspot/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func spotHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/spots", func(ctx *gin.Context) {
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var spots []models.ParkingSpot
			if err := db.
				Model(&models.ParkingSpot{}).
				Where(&models.ParkingSpot{OwnerID: ownerId}).
				Order("created_at desc").
				Find(&spots).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": spots, "count": len(spots)})
		}).
		GET("/spots/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var spot models.ParkingSpot
			if err := db.
				Model(&models.ParkingSpot{}).
				Where(&models.ParkingSpot{ID: params.ID}).
				Preload("Markers").
				First(&spot).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "parking spot not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": spot})
		}).
		POST("/spots", func(ctx *gin.Context) {
			var body types.CreateSpotRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			spot := models.ParkingSpot{
				Street:     body.Street,
				City:       body.City,
				PostalCode: body.PostalCode,
				Country:    body.Country,
				BayNumber:  body.BayNumber,
				Info:       body.Info,
				OwnerID:    ownerId,
			}
			db := db.GetDb()
			if err := db.Create(&spot).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": spot.ID})
		}).
		POST("/spots/:id/photo", func(ctx *gin.Context) {
			uploadSpotAsset(ctx, "photo", "photo_url", "image/jpeg")
		}).
		POST("/spots/:id/document", func(ctx *gin.Context) {
			uploadSpotAsset(ctx, "document", "document_url", "application/pdf")
		}).
		DELETE("/spots/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var spot models.ParkingSpot
				if err := tx.
					Where(&models.ParkingSpot{ID: params.ID, OwnerID: ownerId}).
					First(&spot).
					Error; err != nil {
					return err
				}
				var active int64
				if err := tx.
					Model(&models.Marker{}).
					Where(&models.Marker{SpotID: params.ID}).
					Count(&active).
					Error; err != nil {
					return err
				}
				if active > 0 {
					return fmt.Errorf("parking spot [%d] still has an active offer", params.ID)
				}
				return tx.Delete(&models.ParkingSpot{}, params.ID).Error
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

func uploadSpotAsset(ctx *gin.Context, field string, column string, contentType string) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	ownerId := ctx.GetUint("id")
	db := db.GetDb()
	var spot models.ParkingSpot
	if err := db.
		Where(&models.ParkingSpot{ID: params.ID}).
		First(&spot).
		Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "parking spot not found"})
		return
	}
	if spot.OwnerID != ownerId {
		ctx.Status(http.StatusForbidden)
		return
	}
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	key := fmt.Sprintf("spots/%d/%s_%s", params.ID, field, uuid.NewString())
	url, err := awslib.S3UploadAsset(key, file, contentType)
	if err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := db.
		Model(&models.ParkingSpot{}).
		Where(&models.ParkingSpot{ID: params.ID}).
		Update(column, url).
		Error; err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": url})
}
