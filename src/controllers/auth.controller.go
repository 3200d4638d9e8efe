package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"parkspot/src/db"
	"parkspot/src/lib"
	"parkspot/src/models"
	"parkspot/src/types"
	"parkspot/src/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthLogin exchanges a Firebase identity (looked up by email) for an
// application JWT. The user must exist on both sides.
func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	auth, err := lib.GetFirebaseAuth()
	if err != nil {
		log.Printf("Error initializing FirebaseAuth client: %s\n", err.Error())
		return nil, http.StatusBadRequest, err
	}
	user, err := auth.GetUserByEmail(context.Background(), body.Email)
	if err != nil {
		log.Printf("error from Firebase: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	db := db.GetDb()
	var muser models.User
	if err = db.
		Model(&models.User{}).
		Where(&models.User{Email: user.Email}).
		First(&muser).
		Error; err != nil {
		log.Printf("error: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	jwt, err := utils.GenerateJWT(muser.Email, muser.ID, muser.Admin)
	if err != nil {
		log.Printf("Error generating token for user [%d]: %s\n", muser.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}

	rd := lib.GetRedisClient()
	if rd != nil {
		_, err = rd.JSONSet(ctx, fmt.Sprintf("%d:user", muser.ID), "$", &muser).Result()
		if err != nil {
			log.Printf("[redis] Error updating user cache: %s\n", err.Error())
		}
	}

	return &jwt, http.StatusOK, nil
}

// AuthRegister creates the application user row for an existing
// Firebase identity.
func AuthRegister(ctx *gin.Context) (id *uint, status int, err error) {
	var body types.RegisterUserRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	auth, err := lib.GetFirebaseAuth()
	if err != nil {
		log.Printf("Error initializing FirebaseAuth client: %s\n", err.Error())
		return nil, http.StatusBadRequest, err
	}
	fuser, err := auth.GetUserByEmail(context.Background(), body.Email)
	if err != nil {
		log.Printf("error from Firebase: %s\n", err.Error())
		return nil, http.StatusNotFound, err
	}

	user := models.User{
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		UID:       fuser.UID,
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.
			Model(&models.User{}).
			Where(&models.User{Email: body.Email}).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("user with email %s already exists", body.Email)
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error registering user: %s\n", err.Error())
		return nil, http.StatusBadRequest, err
	}
	return &user.ID, http.StatusCreated, nil
}
