package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/stream"
)

// Streamer is the broadcast distributor for this instance, wired in at
// startup.
var Streamer *stream.Dispatcher

type CreateMessageInput struct {
	RoomID  string `json:"room_id" binding:"required" example:"0"`
	Content string `json:"content" binding:"required" example:"Hello, everyone!"`
}

// GetMessages godoc
// @Summary Get a page of messages for a room
// @Description Returns up to size messages, newest first, starting at offset. A room with no history yields an empty list.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param offset query int false "Page offset" default(0)
// @Param size query int false "Page size" default(50)
// @Success 200 {array} models.Message "List of messages"
// @Failure 400 {object} map[string]string "Invalid pagination"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{id}/messages [get]
func GetMessages(c *gin.Context) {
	roomID := c.Param("id")

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination"})
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "50"))
	if err != nil || size < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination"})
		return
	}

	messages, err := chat.PageMessages(c.Request.Context(), roomID, offset, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// CreateMessage godoc
// @Summary Post a message to a room
// @Description Appends a message to the room's log and broadcasts it to every live client across all server instances
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body CreateMessageInput true "Message"
// @Success 201 {object} map[string]interface{} "The stored message"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a room member"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [post]
func CreateMessage(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := chat.IsMember(c.Request.Context(), userID, input.RoomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check room membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this room"})
		return
	}

	message, err := chat.AppendMessage(c.Request.Context(), input.RoomID, userID, input.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store message"})
		return
	}

	// The append is durable; a failed broadcast only costs liveness, clients
	// still see the message on their next history fetch.
	if err := Streamer.PublishMessage(c.Request.Context(), message); err != nil {
		log.Printf("error publishing message to room %s: %v", input.RoomID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    message,
	})
}
