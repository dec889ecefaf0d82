package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/models"
)

// participantResponse builds the public participant summary
func participantResponse(p *models.RoomParticipant) gin.H {
	return gin.H{
		"id":                p.ID,
		"user_id":           p.UserID,
		"guest_name":        p.GuestName,
		"display_name":      p.DisplayName(),
		"role":              p.Role,
		"is_active":         p.IsActive,
		"is_audio_on":       p.IsAudioOn,
		"is_video_on":       p.IsVideoOn,
		"is_screen_sharing": p.IsScreenSharing,
		"joined_at":         p.JoinedAt,
		"left_at":           p.LeftAt,
	}
}

// roomResponse builds the full room summary, including the derived live flag,
// duration and the on-demand active participant count
func roomResponse(room *models.MeetingRoom) gin.H {
	count, err := room.ParticipantCount(database.DB)
	if err != nil {
		count = 0
	}

	return gin.H{
		"id":                    room.ID,
		"room_code":             room.RoomCode,
		"title":                 room.Title,
		"host_id":               room.HostID,
		"is_active":             room.IsActive,
		"is_live":               room.IsLive(),
		"allow_screen_sharing":  room.AllowScreenSharing,
		"allow_chat":            room.AllowChat,
		"require_host_approval": room.RequireHostApproval,
		"max_participants":      room.MaxParticipants,
		"participant_count":     count,
		"duration_minutes":      room.DurationMinutes(),
		"created_at":            room.CreatedAt,
		"started_at":            room.StartedAt,
		"ended_at":              room.EndedAt,
	}
}

// chatMessageResponse builds the chat message summary with its resolved sender
func chatMessageResponse(m *models.ChatMessage) gin.H {
	return gin.H{
		"id":        m.ID,
		"sender":    participantResponse(&m.Sender),
		"message":   m.Message,
		"timestamp": m.Timestamp,
	}
}
