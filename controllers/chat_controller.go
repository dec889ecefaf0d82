package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/models"
	"github.com/norawee/meetroom_backend/websocket"
)

type CreateChatMessageInput struct {
	Message string `json:"message" binding:"required,max=1000" example:"Hello, everyone!"`
}

// GetChatMessages godoc
// @Summary List a room's chat messages
// @Description Returns the full chat log of an active room, oldest first
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]interface{} "List of messages"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Invalid or inactive room code"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{code}/chat [get]
func GetChatMessages(c *gin.Context) {
	room, ok := findActiveRoom(c, c.Param("code"))
	if !ok {
		return
	}

	var messages []models.ChatMessage
	if err := database.DB.
		Where("room_id = ?", room.ID).
		Order("timestamp ASC").
		Preload("Sender").
		Preload("Sender.User").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	response := []gin.H{}
	for i := range messages {
		response = append(response, chatMessageResponse(&messages[i]))
	}

	c.JSON(http.StatusOK, gin.H{"messages": response})
}

// CreateChatMessage godoc
// @Summary Send a chat message
// @Description Appends a message to the room's chat log as the authenticated user's active participant
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Param message body CreateChatMessageInput true "Message"
// @Success 201 {object} map[string]interface{} "Message sent successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room or participant not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{code}/chat [post]
func CreateChatMessage(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	room, ok := findActiveRoom(c, c.Param("code"))
	if !ok {
		return
	}

	var participant models.RoomParticipant
	if err := database.DB.
		Where("room_id = ? AND user_id = ? AND is_active = ?", room.ID, userID, true).
		First(&participant).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "You are not in this room"})
		return
	}

	var input CreateChatMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := models.ChatMessage{
		RoomID:   room.ID,
		SenderID: participant.ID,
		Message:  input.Message,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create message"})
		return
	}

	// Load sender data for the response and the broadcast
	database.DB.Preload("Sender").Preload("Sender.User").First(&message, message.ID)

	websocket.BroadcastToRoom(room.RoomCode, "chat_message", chatMessageResponse(&message))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent successfully",
		"data":    chatMessageResponse(&message),
	})
}
