package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"parkspot/src/lib"
	"parkspot/src/types"
	"time"

	"github.com/gin-gonic/gin"
)

type geocodeResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// geoHandlers exposes the address lookup used to pre-fill a marker
// position. Results are cached; the maps service is only hit on miss.
func geoHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/geocode", func(ctx *gin.Context) {
			var query types.GeocodeQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			cacheKey := fmt.Sprintf("geocode:%s", query.Address)
			rd := lib.GetRedisClient()
			if rd != nil {
				if cached, err := rd.Get(ctx, cacheKey).Result(); err == nil {
					var result geocodeResult
					if err := json.Unmarshal([]byte(cached), &result); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": result})
						return
					}
				}
			}
			lat, lng, err := lib.GeocodeAddress(ctx, query.Address)
			if err != nil {
				log.Printf("Geocode failed for [%s]: %s\n", query.Address, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			result := geocodeResult{Latitude: lat, Longitude: lng}
			if rd != nil {
				if payload, err := json.Marshal(&result); err == nil {
					if err := rd.SetEx(ctx, cacheKey, string(payload), 24*time.Hour).Err(); err != nil {
						log.Printf("[redis] Error caching geocode result: %s\n", err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		})
	return g
}
