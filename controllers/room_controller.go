package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/relaychat/chat_backend/chat"
)

type CreatePrivateRoomInput struct {
	User1 uint `json:"user1" binding:"required" example:"1"`
	User2 uint `json:"user2" binding:"required" example:"2"`
}

// GetRooms godoc
// @Summary Get all rooms for a user
// @Description Returns every room in the user's membership set. Named rooms carry their display name; private rooms carry both members' usernames.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} models.Room "List of rooms"
// @Failure 400 {object} map[string]string "Invalid user or room id"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{id} [get]
func GetRooms(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	rooms, err := chat.ListRoomsForUser(c.Request.Context(), uint(userID))
	if err != nil {
		if errors.Is(err, chat.ErrInvalidRoomID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed room id in membership set"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// CreatePrivateRoom godoc
// @Summary Create a private room between two users
// @Description Creates (idempotently) the canonical private room for a pair of users and adds it to both membership sets
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreatePrivateRoomInput true "Member pair"
// @Success 201 {object} models.Room "The private room"
// @Failure 400 {object} map[string]string "Invalid input or user pair"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/private [post]
func CreatePrivateRoom(c *gin.Context) {
	var input CreatePrivateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := chat.CreatePrivateRoom(c.Request.Context(), input.User1, input.User2)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidRoomID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No private room exists for this pair of users"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, room)
}
