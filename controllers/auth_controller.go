package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
	"github.com/relaychat/chat_backend/utils"
	"gorm.io/gorm"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in, registering the account on first use
// @Description Authenticates a user. An unknown username creates a new account with the supplied password, so login never distinguishes "wrong username" from "wrong password".
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginInput true "Credentials"
// @Success 200 {object} map[string]interface{} "User and session token"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	result := database.DB.Where("username = ?", input.Username).First(&user)
	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		// First login doubles as registration
		user = models.User{
			Username: input.Username,
			Password: input.Password,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		// Every user belongs to the default room from day one
		if err := chat.AddMember(c.Request.Context(), user.ID, chat.DefaultRoomID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set up user rooms"})
			return
		}

		log.Printf("Created new user id=%d username=%s", user.ID, user.Username)
	case result.Error != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	default:
		if err := user.ValidatePassword(input.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
	}

	token, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

// Logout godoc
// @Summary Log out the current session
// @Description Revokes the presented session token. Logging out an already-revoked session succeeds.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/logout [post]
func Logout(c *gin.Context) {
	claims := c.MustGet("claims").(*utils.SessionClaims)

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := chat.RevokeToken(c.Request.Context(), claims.ID, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// @Summary Get the authenticated user
// @Description Returns the user behind the presented session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Authenticated user"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/me [get]
func Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":       c.MustGet("userID").(uint),
		"username": c.MustGet("username").(string),
	})
}
