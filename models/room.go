package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	roomCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	roomCodeLength   = 9
	maxCodeAttempts  = 100
)

// ErrRoomCodeExhausted is returned when the generator fails to find an unused
// code within maxCodeAttempts. With a 36^9 space this only happens when the
// random source or the database is misbehaving.
var ErrRoomCodeExhausted = errors.New("failed to generate a unique room code")

type MeetingRoom struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	RoomCode string `gorm:"size:12;not null;uniqueIndex" json:"room_code"`
	Title    string `gorm:"size:200;not null" json:"title"`
	HostID   uint   `gorm:"not null;index" json:"host_id"`
	Host     User   `gorm:"foreignKey:HostID" json:"host,omitempty"`

	// Room settings
	IsActive            bool `json:"is_active"`
	AllowScreenSharing  bool `json:"allow_screen_sharing"`
	AllowChat           bool `json:"allow_chat"`
	RequireHostApproval bool `json:"require_host_approval"`
	MaxParticipants     int  `json:"max_participants"`

	CreatedAt time.Time  `json:"created_at"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`

	Participants []RoomParticipant `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	ChatMessages []ChatMessage     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
}

// GenerateRoomCode produces an unused room code in the form xxx-xxx-xxx drawn
// from lowercase letters and digits. The uniqueness check retries with a fresh
// code on collision, capped at maxCodeAttempts rather than looping forever.
func GenerateRoomCode(db *gorm.DB) (string, error) {
	buf := make([]byte, roomCodeLength)
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for i := range buf {
			buf[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
		}
		code := fmt.Sprintf("%s-%s-%s", buf[:3], buf[3:6], buf[6:])

		var count int64
		if err := db.Model(&MeetingRoom{}).Where("room_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrRoomCodeExhausted
}

// BeforeCreate assigns the UUID primary key and a fresh room code
func (r *MeetingRoom) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.RoomCode == "" {
		code, err := GenerateRoomCode(tx)
		if err != nil {
			return err
		}
		r.RoomCode = code
	}
	return nil
}

// IsLive reports whether the meeting is currently running: the room is active,
// has been started and has not ended.
func (r *MeetingRoom) IsLive() bool {
	return r.IsActive && r.StartedAt != nil && r.EndedAt == nil
}

// DurationMinutes returns the meeting duration in whole minutes. A meeting
// that has not started has a duration of zero; a running meeting is measured
// up to now.
func (r *MeetingRoom) DurationMinutes() int {
	if r.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if r.EndedAt != nil {
		end = *r.EndedAt
	}
	return int(end.Sub(*r.StartedAt).Minutes())
}

// ParticipantCount counts the participants currently marked active. The count
// is always computed from the rows, never cached.
func (r *MeetingRoom) ParticipantCount(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&RoomParticipant{}).
		Where("room_id = ? AND is_active = ?", r.ID, true).
		Count(&count).Error
	return count, err
}

// Start stamps started_at if the meeting has not started yet. Calling Start on
// a started meeting is a no-op, not an error.
func (r *MeetingRoom) Start(db *gorm.DB) error {
	if r.StartedAt != nil {
		return nil
	}
	now := time.Now()
	if err := db.Model(r).Update("started_at", now).Error; err != nil {
		return err
	}
	r.StartedAt = &now
	return nil
}

// End stamps ended_at, deactivates the room and disconnects every participant
// still marked active, all with the same timestamp. Calling End on an ended
// meeting is a no-op, not an error. Ending a meeting that never started is
// also a no-op: ended_at is never set before started_at.
func (r *MeetingRoom) End(db *gorm.DB) error {
	if r.StartedAt == nil || r.EndedAt != nil {
		return nil
	}
	now := time.Now()
	if err := db.Model(r).Updates(map[string]interface{}{
		"ended_at":  now,
		"is_active": false,
	}).Error; err != nil {
		return err
	}
	if err := db.Model(&RoomParticipant{}).
		Where("room_id = ? AND is_active = ?", r.ID, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   now,
		}).Error; err != nil {
		return err
	}
	r.EndedAt = &now
	r.IsActive = false
	return nil
}
