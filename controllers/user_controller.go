package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/relaychat/chat_backend/chat"
	"github.com/relaychat/chat_backend/database"
	"github.com/relaychat/chat_backend/models"
)

// GetOnlineUsers godoc
// @Summary Get currently online users
// @Description Returns the users currently connected to a live stream on any instance, keyed by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]models.PublicUser "Online users"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/users/online [get]
func GetOnlineUsers(c *gin.Context) {
	users, err := chat.ListOnline(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch online users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUsers godoc
// @Summary Get users by id
// @Description Returns the requested users annotated with their presence state
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param ids query []string true "User IDs" collectionFormat(multi)
// @Success 200 {object} map[string]models.PublicUser "Requested users"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No ids supplied"
// @Router /api/users [get]
func GetUsers(c *gin.Context) {
	ids := c.QueryArray("ids")
	if len(ids) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No user ids supplied"})
		return
	}

	users := map[string]models.PublicUser{}
	for _, id := range ids {
		uid, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			continue
		}

		var user models.User
		if err := database.DB.First(&user, uint(uid)).Error; err != nil {
			log.Printf("requested user %s not found: %v", id, err)
			continue
		}

		online, err := chat.IsOnline(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check presence"})
			return
		}

		users[id] = models.PublicUser{ID: user.ID, Username: user.Username, Online: online}
	}

	c.JSON(http.StatusOK, users)
}
