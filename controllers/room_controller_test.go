package controllers

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/models"
	"github.com/stretchr/testify/assert"
)

var roomCodePattern = regexp.MustCompile(`^[a-z0-9]{3}-[a-z0-9]{3}-[a-z0-9]{3}$`)

func TestCreateRoomDefaults(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")

	c, w := testContext(t, "POST", "/api/rooms", `{"title": "Weekly Standup"}`)
	c.Set("userID", host.ID)
	CreateRoom(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	room := body["room"].(map[string]interface{})

	assert.Regexp(t, roomCodePattern, room["room_code"])
	assert.Equal(t, "Weekly Standup", room["title"])
	assert.Equal(t, true, room["is_active"])
	assert.Equal(t, false, room["is_live"])
	assert.Equal(t, true, room["allow_chat"])
	assert.Equal(t, true, room["allow_screen_sharing"])
	assert.Equal(t, false, room["require_host_approval"])
	assert.EqualValues(t, 100, room["max_participants"])
	assert.EqualValues(t, 0, room["participant_count"])
}

func TestCreateRoomCustomSettings(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")

	c, w := testContext(t, "POST", "/api/rooms",
		`{"title": "Private", "allow_chat": false, "require_host_approval": true, "max_participants": 5}`)
	c.Set("userID", host.ID)
	CreateRoom(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	room := decodeBody(t, w)["room"].(map[string]interface{})
	assert.Equal(t, false, room["allow_chat"])
	assert.Equal(t, true, room["require_host_approval"])
	assert.EqualValues(t, 5, room["max_participants"])
}

func TestCreateRoomRequiresTitle(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")

	c, w := testContext(t, "POST", "/api/rooms", `{}`)
	c.Set("userID", host.ID)
	CreateRoom(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomStatusShape(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)

	c, w := testContext(t, "GET", "/api/rooms/"+room.RoomCode+"/info", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	RoomStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	for _, key := range []string{
		"room_code", "title", "is_active", "is_live", "participant_count",
		"max_participants", "allow_chat", "allow_screen_sharing",
		"require_host_approval", "duration_minutes",
	} {
		assert.Contains(t, body, key)
	}
	assert.Equal(t, true, body["is_live"])
	assert.EqualValues(t, 1, body["participant_count"])
}

func TestRoomStatusReportsEndedRoom(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)
	assert.Equal(t, http.StatusOK, leaveAsUser(t, room.RoomCode, host.ID).Code)

	c, w := testContext(t, "GET", "/api/rooms/"+room.RoomCode+"/info", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	RoomStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["is_active"])
	assert.Equal(t, false, body["is_live"])
	assert.EqualValues(t, 0, body["participant_count"])
}

func TestStartMeetingHostOnly(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	c, w := testContext(t, "POST", "/api/rooms/"+room.RoomCode+"/start", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", user.ID)
	StartMeeting(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = testContext(t, "POST", "/api/rooms/"+room.RoomCode+"/start", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", host.ID)
	StartMeeting(c)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NotNil(t, reloadRoom(t, room.ID).StartedAt)
}

func TestStartMeetingTwiceKeepsTimestamp(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	start := func() {
		c, w := testContext(t, "POST", "/api/rooms/"+room.RoomCode+"/start", "")
		c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
		c.Set("userID", host.ID)
		StartMeeting(c)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	start()
	first := reloadRoom(t, room.ID).StartedAt
	assert.NotNil(t, first)

	time.Sleep(20 * time.Millisecond)
	start()
	second := reloadRoom(t, room.ID).StartedAt
	assert.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}

func TestEndMeetingDisconnectsParticipants(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)
	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)

	c, w := testContext(t, "POST", "/api/rooms/"+room.RoomCode+"/end", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", host.ID)
	EndMeeting(c)
	assert.Equal(t, http.StatusOK, w.Code)

	reloaded := reloadRoom(t, room.ID)
	assert.False(t, reloaded.IsActive)
	assert.NotNil(t, reloaded.EndedAt)

	count, err := reloaded.ParticipantCount(database.DB)
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteRoomCascades(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)

	var participant models.RoomParticipant
	assert.NoError(t, database.DB.Where("room_id = ?", room.ID).First(&participant).Error)
	message := models.ChatMessage{RoomID: room.ID, SenderID: participant.ID, Message: "hello"}
	assert.NoError(t, database.DB.Create(&message).Error)

	c, w := testContext(t, "DELETE", "/api/rooms/"+room.RoomCode, "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", host.ID)
	DeleteRoom(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.MeetingRoom{}).Where("id = ?", room.ID).Count(&count)
	assert.Zero(t, count)
	database.DB.Model(&models.RoomParticipant{}).Where("room_id = ?", room.ID).Count(&count)
	assert.Zero(t, count)
	database.DB.Model(&models.ChatMessage{}).Where("room_id = ?", room.ID).Count(&count)
	assert.Zero(t, count)
}

func TestGetRoomsIncludesParticipations(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	hosted := createTestRoom(t, host.ID, 100)
	joined := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, joined.RoomCode, user.ID).Code)

	c, w := testContext(t, "GET", "/api/rooms", "")
	c.Set("userID", user.ID)
	GetRooms(c)

	assert.Equal(t, http.StatusOK, w.Code)
	rooms := decodeBody(t, w)["rooms"].([]interface{})
	assert.Len(t, rooms, 1)
	first := rooms[0].(map[string]interface{})
	assert.Equal(t, joined.RoomCode, first["room_code"])
	assert.NotEqual(t, hosted.RoomCode, first["room_code"])
}
