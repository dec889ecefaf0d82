package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/models"
	"github.com/norawee/meetroom_backend/utils"
	"github.com/norawee/meetroom_backend/websocket"
	"gorm.io/gorm"
)

type CreateRoomInput struct {
	Title               string `json:"title" binding:"required,max=200" example:"Weekly Standup"`
	AllowScreenSharing  *bool  `json:"allow_screen_sharing"`
	AllowChat           *bool  `json:"allow_chat"`
	RequireHostApproval *bool  `json:"require_host_approval"`
	MaxParticipants     int    `json:"max_participants" binding:"omitempty,min=2,max=500"`
}

type UpdateRoomInput struct {
	Title               string `json:"title" binding:"omitempty,max=200"`
	AllowScreenSharing  *bool  `json:"allow_screen_sharing"`
	AllowChat           *bool  `json:"allow_chat"`
	RequireHostApproval *bool  `json:"require_host_approval"`
}

// findActiveRoom looks up an active room by its code. Responds with 404 and
// returns false when the room is absent or inactive.
func findActiveRoom(c *gin.Context, roomCode string) (*models.MeetingRoom, bool) {
	var room models.MeetingRoom
	err := database.DB.Where("room_code = ? AND is_active = ?", roomCode, true).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invalid or inactive room code"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch room"})
		}
		return nil, false
	}
	return &room, true
}

// CreateRoom godoc
// @Summary Create a new meeting room
// @Description Creates a meeting room with a freshly generated room code and the authenticated user as host
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput true "Room settings"
// @Success 201 {object} map[string]interface{} "Room created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [post]
func CreateRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := models.MeetingRoom{
		Title:               input.Title,
		HostID:              userID,
		IsActive:            true,
		AllowScreenSharing:  true,
		AllowChat:           true,
		RequireHostApproval: false,
		MaxParticipants:     100,
	}
	if input.AllowScreenSharing != nil {
		room.AllowScreenSharing = *input.AllowScreenSharing
	}
	if input.AllowChat != nil {
		room.AllowChat = *input.AllowChat
	}
	if input.RequireHostApproval != nil {
		room.RequireHostApproval = *input.RequireHostApproval
	}
	if input.MaxParticipants > 0 {
		room.MaxParticipants = input.MaxParticipants
	}

	if err := database.DB.Create(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Room created successfully",
		"room":    roomResponse(&room),
	})
}

// GetRooms godoc
// @Summary List the authenticated user's meeting rooms
// @Description Returns rooms the user hosts or has participated in, newest first
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms [get]
func GetRooms(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	memberRoomIDs := database.DB.Model(&models.RoomParticipant{}).
		Select("room_id").
		Where("user_id = ?", userID)

	var rooms []models.MeetingRoom
	if err := database.DB.
		Where("host_id = ? OR id IN (?)", userID, memberRoomIDs).
		Order("created_at DESC").
		Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rooms"})
		return
	}

	response := []gin.H{}
	for i := range rooms {
		response = append(response, roomResponse(&rooms[i]))
	}

	c.JSON(http.StatusOK, gin.H{"rooms": response})
}

// GetRoom godoc
// @Summary Get details of a hosted room
// @Description Returns a room the authenticated user hosts, including its participants
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]interface{} "Room details"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{code} [get]
func GetRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	var room models.MeetingRoom
	if err := database.DB.
		Preload("Participants").
		Preload("Participants.User").
		Where("room_code = ? AND host_id = ?", roomCode, userID).
		First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	participants := []gin.H{}
	for i := range room.Participants {
		participants = append(participants, participantResponse(&room.Participants[i]))
	}

	response := roomResponse(&room)
	response["participants"] = participants

	c.JSON(http.StatusOK, gin.H{"room": response})
}

// UpdateRoom godoc
// @Summary Update a hosted room's settings
// @Description Updates title and feature flags of a room the authenticated user hosts
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Param room body UpdateRoomInput true "Room update"
// @Success 200 {object} map[string]interface{} "Room updated successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{code} [put]
func UpdateRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	var room models.MeetingRoom
	if err := database.DB.Where("room_code = ? AND host_id = ?", roomCode, userID).First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	var input UpdateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.AllowScreenSharing != nil {
		updates["allow_screen_sharing"] = *input.AllowScreenSharing
	}
	if input.AllowChat != nil {
		updates["allow_chat"] = *input.AllowChat
	}
	if input.RequireHostApproval != nil {
		updates["require_host_approval"] = *input.RequireHostApproval
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&room).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Room updated successfully",
		"room":    roomResponse(&room),
	})
}

// DeleteRoom godoc
// @Summary Delete a hosted room
// @Description Deletes a room together with its participants and chat messages (administrative action)
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]string "Room deleted successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{code} [delete]
func DeleteRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	var room models.MeetingRoom
	if err := database.DB.Where("room_code = ? AND host_id = ?", roomCode, userID).First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	// Delete dependents first, then the room itself
	if err := database.DB.Where("room_id = ?", room.ID).Delete(&models.ChatMessage{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room messages"})
		return
	}
	if err := database.DB.Where("room_id = ?", room.ID).Delete(&models.RoomParticipant{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room participants"})
		return
	}
	if err := database.DB.Delete(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// StartMeeting godoc
// @Summary Start a meeting
// @Description Stamps the meeting's start time; only the host may start a meeting. Starting an already started meeting is a no-op.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]string "Meeting started successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{code}/start [post]
func StartMeeting(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	var room models.MeetingRoom
	if err := database.DB.
		Where("room_code = ? AND host_id = ? AND is_active = ?", roomCode, userID, true).
		First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	if err := room.Start(database.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start meeting"})
		return
	}

	websocket.BroadcastToRoom(room.RoomCode, "meeting_started", roomResponse(&room))

	c.JSON(http.StatusOK, gin.H{"message": "Meeting started successfully"})
}

// EndMeeting godoc
// @Summary End a meeting
// @Description Stamps the meeting's end time, deactivates the room and disconnects every active participant; only the host may end a meeting. Ending an already ended meeting is a no-op.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]string "Meeting ended successfully"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{code}/end [post]
func EndMeeting(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	unlock := utils.LockRoom(roomCode)
	defer unlock()

	var room models.MeetingRoom
	if err := database.DB.
		Where("room_code = ? AND host_id = ? AND is_active = ?", roomCode, userID, true).
		First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	if err := room.End(database.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end meeting"})
		return
	}

	websocket.BroadcastToRoom(room.RoomCode, "meeting_ended", roomResponse(&room))

	c.JSON(http.StatusOK, gin.H{"message": "Meeting ended successfully"})
}

// RoomStatus godoc
// @Summary Get room status
// @Description Returns the public room summary; no authentication required
// @Tags rooms
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} map[string]interface{} "Room status"
// @Failure 404 {object} map[string]string "Room not found"
// @Router /api/rooms/{code}/info [get]
func RoomStatus(c *gin.Context) {
	roomCode := c.Param("code")

	var room models.MeetingRoom
	if err := database.DB.Where("room_code = ?", roomCode).First(&room).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}

	count, err := room.ParticipantCount(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_code":             room.RoomCode,
		"title":                 room.Title,
		"is_active":             room.IsActive,
		"is_live":               room.IsLive(),
		"participant_count":     count,
		"max_participants":      room.MaxParticipants,
		"allow_chat":            room.AllowChat,
		"allow_screen_sharing":  room.AllowScreenSharing,
		"require_host_approval": room.RequireHostApproval,
		"duration_minutes":      room.DurationMinutes(),
	})
}
