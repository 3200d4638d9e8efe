package main

import (
	"net/http"
	"parkspot/src/db"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/utils"

	"github.com/gin-gonic/gin"
)

func reviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reviews", func(ctx *gin.Context) {
			var body types.CreateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reviewerId := ctx.GetUint("id")
			id, err := utils.AddReview(&body, reviewerId)
			if err != nil {
				ctx.JSON(offerErrorStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": id})
		}).
		GET("/users/:id/reviews", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var reviews []models.Review
			if err := db.
				Model(&models.Review{}).
				Where(&models.Review{ReviewedID: params.ID}).
				Preload("Reviewer").
				Order("created_at desc").
				Limit(50).
				Find(&reviews).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reviews, "count": len(reviews)})
		})
	return g
}
