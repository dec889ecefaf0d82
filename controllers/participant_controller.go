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

type JoinRoomInput struct {
	RoomCode  string `json:"room_code" binding:"required,max=12" example:"abc-def-123"`
	GuestName string `json:"guest_name" binding:"omitempty,max=100"`
}

type ParticipantStatusInput struct {
	IsAudioOn       *bool `json:"is_audio_on"`
	IsVideoOn       *bool `json:"is_video_on"`
	IsScreenSharing *bool `json:"is_screen_sharing"`
}

// JoinRoom godoc
// @Summary Join a meeting room by room code
// @Description Joins the room as the authenticated user or as a guest with a display name. A host joining starts the meeting.
// @Tags participants
// @Accept json
// @Produce json
// @Param join body JoinRoomInput true "Join request"
// @Success 200 {object} map[string]interface{} "Participant summary"
// @Failure 400 {object} map[string]string "Room full, already joined or guest name missing"
// @Failure 404 {object} map[string]string "Invalid or inactive room code"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/join [post]
func JoinRoom(c *gin.Context) {
	var input JoinRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The capacity check and the participant insert below must not interleave
	// with a concurrent join or end on the same room
	unlock := utils.LockRoom(input.RoomCode)
	defer unlock()

	room, ok := findActiveRoom(c, input.RoomCode)
	if !ok {
		return
	}

	count, err := room.ParticipantCount(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count participants"})
		return
	}
	if count >= int64(room.MaxParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Meeting room is full"})
		return
	}

	var participant models.RoomParticipant

	if v, authenticated := c.Get("userID"); authenticated {
		userID := v.(uint)

		err := database.DB.
			Where("room_id = ? AND user_id = ?", room.ID, userID).
			First(&participant).Error
		switch {
		case err == nil:
			if participant.IsActive {
				c.JSON(http.StatusBadRequest, gin.H{"error": "You are already in this room"})
				return
			}
			// Rejoin reuses the existing membership row
			if err := database.DB.Model(&participant).Updates(map[string]interface{}{
				"is_active": true,
				"left_at":   nil,
			}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
				return
			}
			participant.IsActive = true
			participant.LeftAt = nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			role := models.RoleParticipant
			if userID == room.HostID {
				role = models.RoleHost
			}
			participant = models.RoomParticipant{
				RoomID:    room.ID,
				UserID:    &userID,
				Role:      role,
				IsActive:  true,
				IsAudioOn: true,
				IsVideoOn: true,
			}
			if err := database.DB.Create(&participant).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
				return
			}
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
			return
		}

		// Host joining starts the meeting
		if userID == room.HostID {
			if err := room.Start(database.DB); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start meeting"})
				return
			}
		}
	} else {
		if input.GuestName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Guest name is required for anonymous users"})
			return
		}
		// Guests always get a fresh membership row
		participant = models.RoomParticipant{
			RoomID:    room.ID,
			GuestName: input.GuestName,
			Role:      models.RoleParticipant,
			IsActive:  true,
			IsAudioOn: true,
			IsVideoOn: true,
		}
		if err := database.DB.Create(&participant).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join room"})
			return
		}
	}

	database.DB.Preload("User").First(&participant, participant.ID)

	websocket.BroadcastToRoom(room.RoomCode, "participant_joined", participantResponse(&participant))

	c.JSON(http.StatusOK, participantResponse(&participant))
}

// LeaveRoom godoc
// @Summary Leave a meeting room
// @Description Marks the authenticated user's participant row as left. The host leaving ends the meeting.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Success 200 {object} map[string]string "Successfully left the room"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room or participant not found"
// @Router /api/rooms/{code}/leave [post]
func LeaveRoom(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	roomCode := c.Param("code")

	unlock := utils.LockRoom(roomCode)
	defer unlock()

	room, ok := findActiveRoom(c, roomCode)
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

	if err := participant.Leave(database.DB); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave room"})
		return
	}

	// Host leaving ends the meeting for everyone
	if userID == room.HostID {
		if err := room.End(database.DB); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end meeting"})
			return
		}
	}

	websocket.BroadcastToRoom(room.RoomCode, "participant_left", participantResponse(&participant))

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left the room"})
}

// ListParticipants godoc
// @Summary List active participants of a room
// @Description Returns the participants currently present in the room; no authentication required
// @Tags participants
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} map[string]interface{} "List of participants"
// @Failure 404 {object} map[string]string "Invalid or inactive room code"
// @Router /api/rooms/{code}/participants [get]
func ListParticipants(c *gin.Context) {
	room, ok := findActiveRoom(c, c.Param("code"))
	if !ok {
		return
	}

	var participants []models.RoomParticipant
	if err := database.DB.
		Preload("User").
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}

	response := []gin.H{}
	for i := range participants {
		response = append(response, participantResponse(&participants[i]))
	}

	c.JSON(http.StatusOK, gin.H{"participants": response})
}

// UpdateParticipantStatus godoc
// @Summary Update the caller's media status in a room
// @Description Partially updates the audio, video and screen-sharing flags of the authenticated user's active participant row
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Room code"
// @Param status body ParticipantStatusInput true "Status flags"
// @Success 200 {object} map[string]interface{} "Participant summary"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Room or participant not found"
// @Router /api/rooms/{code}/status [patch]
func UpdateParticipantStatus(c *gin.Context) {
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

	var input ParticipantStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Only the flags present in the payload are touched
	updates := map[string]interface{}{}
	if input.IsAudioOn != nil {
		updates["is_audio_on"] = *input.IsAudioOn
		participant.IsAudioOn = *input.IsAudioOn
	}
	if input.IsVideoOn != nil {
		updates["is_video_on"] = *input.IsVideoOn
		participant.IsVideoOn = *input.IsVideoOn
	}
	if input.IsScreenSharing != nil {
		updates["is_screen_sharing"] = *input.IsScreenSharing
		participant.IsScreenSharing = *input.IsScreenSharing
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&participant).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
			return
		}
		websocket.BroadcastToRoom(room.RoomCode, "participant_status", participantResponse(&participant))
	}

	database.DB.Preload("User").First(&participant, participant.ID)

	c.JSON(http.StatusOK, participantResponse(&participant))
}
