package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/norawee/meetroom_backend/database"
	"github.com/norawee/meetroom_backend/models"
	"github.com/stretchr/testify/assert"
)

func TestJoinRoomUnknownCode(t *testing.T) {
	setupTestDB(t)

	w := joinAsGuest(t, "aaa-bbb-ccc", "Ada")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or inactive room code")
}

func TestJoinRoomInactiveRoom(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)
	database.DB.Model(&room).Update("is_active", false)

	w := joinAsGuest(t, room.RoomCode, "Ada")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinRoomGuestRequiresName(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	w := joinAsGuest(t, room.RoomCode, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Guest name is required")
}

func TestJoinRoomGuestAlwaysCreatesNewRow(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)
	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)

	var count int64
	database.DB.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND guest_name = ?", room.ID, "Ada").
		Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestJoinRoomCapacity(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 1)

	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)

	w := joinAsGuest(t, room.RoomCode, "Grace")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Meeting room is full")
}

func TestJoinRoomAlreadyJoined(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, user.ID).Code)

	w := joinAsUser(t, room.RoomCode, user.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already in this room")
}

func TestJoinRoomRejoinReusesRow(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, user.ID).Code)

	var first models.RoomParticipant
	assert.NoError(t, database.DB.Where("room_id = ? AND user_id = ?", room.ID, user.ID).First(&first).Error)

	assert.Equal(t, http.StatusOK, leaveAsUser(t, room.RoomCode, user.ID).Code)
	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, user.ID).Code)

	var rows []models.RoomParticipant
	assert.NoError(t, database.DB.Where("room_id = ? AND user_id = ?", room.ID, user.ID).Find(&rows).Error)
	assert.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.True(t, rows[0].IsActive)
	assert.Nil(t, rows[0].LeftAt)
}

func TestHostJoinStartsMeeting(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	w := joinAsUser(t, room.RoomCode, host.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, models.RoleHost, body["role"])

	reloaded := reloadRoom(t, room.ID)
	assert.NotNil(t, reloaded.StartedAt)
	assert.True(t, reloaded.IsLive())
}

func TestNonHostJoinDoesNotStartMeeting(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	w := joinAsUser(t, room.RoomCode, user.ID)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, models.RoleParticipant, body["role"])

	reloaded := reloadRoom(t, room.ID)
	assert.Nil(t, reloaded.StartedAt)
	assert.False(t, reloaded.IsLive())
}

func TestLeaveRoomNotJoined(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	w := leaveAsUser(t, room.RoomCode, user.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not in this room")
}

func TestHostLeaveEndsMeetingForEveryone(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 2)

	// Host joins and the meeting goes live
	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)
	liveRoom := reloadRoom(t, room.ID)
	assert.True(t, liveRoom.IsLive())

	// Ada takes the second slot
	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)
	count, err := room.ParticipantCount(database.DB)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Grace bounces off the full room
	w := joinAsGuest(t, room.RoomCode, "Grace")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Meeting room is full")

	// Host leaving ends the meeting and disconnects Ada
	assert.Equal(t, http.StatusOK, leaveAsUser(t, room.RoomCode, host.ID).Code)

	reloaded := reloadRoom(t, room.ID)
	assert.False(t, reloaded.IsActive)
	assert.NotNil(t, reloaded.EndedAt)

	var ada models.RoomParticipant
	assert.NoError(t, database.DB.Where("room_id = ? AND guest_name = ?", room.ID, "Ada").First(&ada).Error)
	assert.False(t, ada.IsActive)
	assert.NotNil(t, ada.LeftAt)
	assert.False(t, ada.LeftAt.Before(*reloaded.EndedAt))
}

func TestListParticipantsOnlyActive(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)
	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Ada").Code)
	assert.Equal(t, http.StatusOK, joinAsGuest(t, room.RoomCode, "Grace").Code)

	var grace models.RoomParticipant
	assert.NoError(t, database.DB.Where("room_id = ? AND guest_name = ?", room.ID, "Grace").First(&grace).Error)
	assert.NoError(t, grace.Leave(database.DB))

	c, w := testContext(t, "GET", "/api/rooms/"+room.RoomCode+"/participants", "")
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	ListParticipants(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	participants := body["participants"].([]interface{})
	assert.Len(t, participants, 2)
}

func TestUpdateParticipantStatusPartial(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	room := createTestRoom(t, host.ID, 100)

	assert.Equal(t, http.StatusOK, joinAsUser(t, room.RoomCode, host.ID).Code)

	c, w := testContext(t, "PATCH", "/api/rooms/"+room.RoomCode+"/status", `{"is_video_on": false}`)
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", host.ID)
	UpdateParticipantStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["is_video_on"])
	// Untouched flags keep their defaults
	assert.Equal(t, true, body["is_audio_on"])
	assert.Equal(t, false, body["is_screen_sharing"])
}

func TestUpdateParticipantStatusNotJoined(t *testing.T) {
	setupTestDB(t)
	host := createTestUser(t, "host")
	user := createTestUser(t, "ada")
	room := createTestRoom(t, host.ID, 100)

	c, w := testContext(t, "PATCH", "/api/rooms/"+room.RoomCode+"/status", `{"is_audio_on": false}`)
	c.Params = gin.Params{{Key: "code", Value: room.RoomCode}}
	c.Set("userID", user.ID)
	UpdateParticipantStatus(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
