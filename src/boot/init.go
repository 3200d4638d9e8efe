package boot

import (
	"errors"
	"log"
	"os"
	"parkspot/src/db"
	"parkspot/src/lib"
	awslib "parkspot/src/lib/aws"
	"parkspot/src/models"
	"parkspot/src/utils"
	"path"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.ParkingSpot{},
		&models.Vehicle{},
		&models.Marker{},
		&models.Reservation{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the periodic sweep: expired markers are
// retired and past-due accepted reservations completed even when
// nobody is reading.
func InitScheduler() {
	id, err := lib.CreateCronJob(func() {
		if err := utils.SweepExpiredMarkers(); err != nil {
			log.Printf("Scheduled sweep failed: %s\n", err.Error())
		}
		utils.CompletePastDueReservations()
	}, 5*time.Minute)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	log.Printf("Job ID: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

func InitBroker() {
	go lib.KafkaCreateTopics(
		lib.TOPIC_MARKERS_EXPIRED,
		lib.TOPIC_RESERVATIONS_ACCEPTED,
		lib.TOPIC_RESERVATIONS_DONE,
	)
}

func DownloadSDKFileFromS3() {
	filename := "admin-sdk-credentials.json"
	secretsDir := os.Getenv("SECRETS_DIR")
	sdkFilePath := path.Join(secretsDir, filename)
	_, err := os.Stat(sdkFilePath)
	if errors.Is(err, os.ErrNotExist) {
		log.Println("File not found. Downloading...")
		if err := awslib.S3DownloadSecret(filename, sdkFilePath); err != nil {
			log.Printf("[S3] Error retrieving object: %s\n", err.Error())
			return
		}
		log.Println("File has been written")
		return
	}
	log.Println("File exists!")
}
