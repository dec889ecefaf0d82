package models

import (
	"time"
)

type ChatMessage struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	RoomID    string          `gorm:"type:uuid;not null;index" json:"room_id"`
	SenderID  uint            `gorm:"not null" json:"sender_id"`
	Sender    RoomParticipant `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Message   string          `gorm:"size:1000;not null" json:"message"`
	Timestamp time.Time       `gorm:"autoCreateTime" json:"timestamp"`
}
