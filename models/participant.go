package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant roles
const (
	RoleHost        = "host"
	RoleCoHost      = "co_host"
	RoleParticipant = "participant"
)

type RoomParticipant struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RoomID    string `gorm:"type:uuid;not null;index:idx_room_user,unique" json:"room_id"`
	UserID    *uint  `gorm:"index:idx_room_user,unique" json:"user_id,omitempty"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GuestName string `gorm:"size:100" json:"guest_name"`

	Role string `gorm:"size:20;not null" json:"role"`

	// Connection status
	IsActive        bool `json:"is_active"`
	IsAudioOn       bool `json:"is_audio_on"`
	IsVideoOn       bool `json:"is_video_on"`
	IsScreenSharing bool `json:"is_screen_sharing"`

	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LeftAt   *time.Time `json:"left_at"`
}

// DisplayName resolves the name shown for the participant. A registered user's
// identity always wins over a stored guest name.
func (p *RoomParticipant) DisplayName() string {
	if p.User != nil {
		return p.User.FullName()
	}
	if p.GuestName != "" {
		return p.GuestName
	}
	return "Guest User"
}

// Leave marks the participant as disconnected and stamps the leave time
func (p *RoomParticipant) Leave(db *gorm.DB) error {
	now := time.Now()
	if err := db.Model(p).Updates(map[string]interface{}{
		"is_active": false,
		"left_at":   now,
	}).Error; err != nil {
		return err
	}
	p.IsActive = false
	p.LeftAt = &now
	return nil
}
