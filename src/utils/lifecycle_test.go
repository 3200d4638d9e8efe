package utils

import (
	"parkspot/src/db"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/workflow"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	db.NewDB(gormDB)
	return mock
}

func pendingReservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "marker_id", "vehicle_id", "user_id", "status"}).
		AddRow(1, 2, 3, 9, "pending")
}

func TestAcceptRequestConditionalWrite(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"\."id" = \$1`).
		WillReturnRows(pendingReservationRows())
	mock.ExpectQuery(`SELECT \* FROM "markers" WHERE "markers"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id", "owner_id", "reserved"}).
			AddRow(2, 4, 5, false))
	mock.ExpectExec(`UPDATE "markers" SET "reserved"=.+id = \$3 AND reserved = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "reservations" SET "status"=.+"reservations"\."id" = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "reservations" SET "status"=.+id <> \$5`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := AcceptRequest(1, 5)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAcceptRequestLosesRace(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"\."id" = \$1`).
		WillReturnRows(pendingReservationRows())
	mock.ExpectQuery(`SELECT \* FROM "markers" WHERE "markers"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id", "owner_id", "reserved"}).
			AddRow(2, 4, 5, false))
	mock.ExpectExec(`UPDATE "markers" SET "reserved"=.+id = \$3 AND reserved = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := AcceptRequest(1, 5)
	assert.ErrorIs(t, err, workflow.ErrMarkerReserved)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAddReviewAfterMarkerRetired(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "marker_id", "vehicle_id", "user_id", "status"}).
			AddRow(1, 2, 3, 9, "completed"))
	mock.ExpectQuery(`SELECT \* FROM "markers" WHERE "markers"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id", "owner_id", "reserved", "deleted_at"}).
			AddRow(2, 4, 5, true, time.Now()))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	id, err := AddReview(&types.CreateReviewRequestBody{ReservationID: 1, Rating: 5}, 5)
	assert.Nil(t, err)
	assert.Equal(t, uint(7), id)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestAddReviewMissingMarker(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE "reservations"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "marker_id", "vehicle_id", "user_id", "status"}).
			AddRow(1, 2, 3, 9, "completed"))
	mock.ExpectQuery(`SELECT \* FROM "markers" WHERE "markers"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id", "owner_id", "reserved"}))
	mock.ExpectRollback()

	_, err := AddReview(&types.CreateReviewRequestBody{ReservationID: 1, Rating: 5}, 5)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCompleteReservationAlreadyDone(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET "status"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	reservation := models.Reservation{
		ID:     4,
		Status: types.RESERVATION_ACCEPTED,
		EndsAt: time.Now().Add(-time.Hour),
	}
	err := CheckAndCompleteReservation(&reservation)
	assert.Nil(t, err)
	assert.Equal(t, types.RESERVATION_COMPLETED, reservation.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestSweepKeepsAcceptedMarkers(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET "status"=.+marker_id IN \(SELECT`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectPrepare(`SELECT \* FROM "markers"`).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id", "owner_id", "reserved", "starts_at", "ends_at"}).
			AddRow(3, 4, 5, true, time.Now().Add(-4*time.Hour), time.Now().Add(-time.Hour)))
	mock.ExpectPrepare(`SELECT \* FROM "reservations"`).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "marker_id", "user_id", "status"}).
			AddRow(8, 3, 9, "accepted"))

	err := SweepExpiredMarkers()
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestCloseOpenReservations(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "markers" SET "reserved"=.+id IN \(SELECT`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "reservations" SET "status"=.+user_id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "reservations" SET "status"=.+marker_id IN \(SELECT`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		return CloseOpenReservations(tx, 9)
	})
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}
