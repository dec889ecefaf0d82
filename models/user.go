package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Username    string        `gorm:"size:255;not null;unique" json:"username"`
	Email       string        `gorm:"size:255;not null;unique" json:"email"`
	Password    string        `gorm:"size:255;not null" json:"-"`
	FirstName   string        `gorm:"size:150" json:"first_name"`
	LastName    string        `gorm:"size:150" json:"last_name"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	HostedRooms []MeetingRoom `gorm:"foreignKey:HostID" json:"-"`
}

// BeforeSave hashes the password before saving to the database
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// ValidatePassword checks if the provided password matches the stored hash
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// FullName returns "First Last", falling back to the username when both name
// fields are empty.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
