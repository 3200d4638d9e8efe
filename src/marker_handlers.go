package main

import (
	"errors"
	"net/http"
	"parkspot/src/db"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/utils"
	"parkspot/src/workflow"

	"github.com/gin-gonic/gin"
)

func markerHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/markers", func(ctx *gin.Context) {
			var filters types.MarkersQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var ownerId *uint
			if filters.Owned {
				id := ctx.GetUint("id")
				ownerId = &id
			}
			markers, err := utils.ListActiveOffers(ownerId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": markers, "count": len(markers)})
		}).
		GET("/markers/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var marker models.Marker
			if err := db.
				Model(&models.Marker{}).
				Where(&models.Marker{ID: params.ID}).
				Preload("Spot").
				Preload("Reservations").
				First(&marker).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": marker})
		}).
		POST("/markers", func(ctx *gin.Context) {
			var body types.CreateOfferRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			draft, err := utils.CreateOffer(&body, ownerId)
			if err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, utils.ErrNotAuthenticated) {
					status = http.StatusUnauthorized
				}
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			id, err := utils.PlaceMarkerAt(draft, body.Latitude, body.Longitude)
			if err != nil {
				ctx.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		DELETE("/markers/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			if err := utils.RetractOffer(params.ID, ownerId); err != nil {
				ctx.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/markers/:id/requests", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ownerId := ctx.GetUint("id")
			db := db.GetDb()
			var marker models.Marker
			if err := db.
				Where(&models.Marker{ID: params.ID}).
				First(&marker).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "marker not found"})
				return
			}
			if marker.OwnerID != ownerId {
				ctx.Status(http.StatusForbidden)
				return
			}
			var requests []models.Reservation
			if err := db.
				Model(&models.Reservation{}).
				Where(&models.Reservation{MarkerID: params.ID}).
				Preload("User").
				Preload("Vehicle").
				Order("created_at desc").
				Find(&requests).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": requests, "count": len(requests)})
		})
	return g
}

func offerErrorStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidWindow),
		errors.Is(err, workflow.ErrDuplicateOffer),
		errors.Is(err, workflow.ErrOutsideOffer),
		errors.Is(err, workflow.ErrMarkerReserved),
		errors.Is(err, workflow.ErrDuplicateRequest),
		errors.Is(err, workflow.ErrReservationClosed):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
