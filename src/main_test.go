package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"parkspot/src/types"
	"parkspot/src/utils"
	"parkspot/src/workflow"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

type TestSuite struct {
	suite.Suite
}

func (s *TestSuite) SetupSuite() {
	registerValidators()
	gin.SetMode(gin.TestMode)
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Setenv("MAINTENANCE_MODE", "false")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1 := apiv1Group(router)
	markerHandlers(apiv1)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/markers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestCreateOfferValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	markerHandlers(apiv1)

	s.Run("Should reject an empty body", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/markers", strings.NewReader("{}"))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(rbytes), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("Should reject a window ending before it starts", func() {
		body := types.CreateOfferRequestBody{
			SpotID:    1,
			StartsAt:  "2030-06-01 12:00:00 +00:00",
			EndsAt:    "2030-06-01 09:00:00 +00:00",
			Latitude:  52.37,
			Longitude: 4.89,
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/markers", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a window in the past", func() {
		body := types.CreateOfferRequestBody{
			SpotID:    1,
			StartsAt:  "2020-06-01 09:00:00 +00:00",
			EndsAt:    "2020-06-01 12:00:00 +00:00",
			Latitude:  52.37,
			Longitude: 4.89,
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/markers", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a non-numeric marker id", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/v1/markers/abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestSubmitRequestValidation() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	reservationHandlers(apiv1)

	s.Run("Should reject a request window ending before it starts", func() {
		body := types.CreateReservationRequestBody{
			MarkerID:  1,
			VehicleID: 1,
			StartsAt:  "2030-06-01 12:00:00 +00:00",
			EndsAt:    "2030-06-01 09:00:00 +00:00",
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/reservations", strings.NewReader(string(rbytes)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a review rating outside 1-5", func() {
		reviewRouter := setupRouter()
		rv1 := apiv1Group(reviewRouter)
		reviewHandlers(rv1)

		body := types.CreateReviewRequestBody{
			ReservationID: 1,
			Rating:        6,
		}
		rbytes, _ := json.Marshal(&body)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/reviews", strings.NewReader(string(rbytes)))
		reviewRouter.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestErrorStatusMapping() {
	assert.Equal(s.T(), http.StatusUnauthorized, offerErrorStatus(utils.ErrNotAuthenticated))
	assert.Equal(s.T(), http.StatusNotFound, offerErrorStatus(utils.ErrNotFound))
	assert.Equal(s.T(), http.StatusForbidden, offerErrorStatus(utils.ErrNotPermitted))
	assert.Equal(s.T(), http.StatusBadRequest, offerErrorStatus(workflow.ErrInvalidWindow))
	assert.Equal(s.T(), http.StatusBadRequest, offerErrorStatus(workflow.ErrDuplicateOffer))
	assert.Equal(s.T(), http.StatusBadRequest, offerErrorStatus(workflow.ErrMarkerReserved))
	assert.Equal(s.T(), http.StatusUnprocessableEntity, offerErrorStatus(io.ErrUnexpectedEOF))
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
