package registry

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/rvermeulen/roomcast/internal/database"
	"github.com/rvermeulen/roomcast/internal/testutil"
	"github.com/rvermeulen/roomcast/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateRoom(t *testing.T) {
	t.Run("successfully creates room", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		founder := types.UserSnapshot{Uuid: "user-1", DisplayName: "alice"}
		db.On("CreateRoom", mock.AnythingOfType("database.Room"), "user-1").
			Return(database.Room{Uuid: "room-1", Name: "general"}, nil)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		roomUuid, err := reg.CreateRoom("general", founder)
		assert.NoError(t, err, "expected no error creating room")
		assert.Equal(t, "room-1", roomUuid, "expected uuid of persisted room")
	})

	t.Run("persistence failure propagates", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		storeErr := &database.StoreError{Op: "create room", Err: errors.New("connection reset")}
		db.On("CreateRoom", mock.AnythingOfType("database.Room"), "user-1").
			Return(database.Room{}, storeErr)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		roomUuid, err := reg.CreateRoom("general", types.UserSnapshot{Uuid: "user-1"})
		assert.Empty(t, roomUuid, "expected no uuid on persistence failure")

		var se *database.StoreError
		assert.ErrorAs(t, err, &se, "expected a StoreError")
	})
}

func TestJoinRoom(t *testing.T) {
	user := types.UserSnapshot{Uuid: "user-2", DisplayName: "bob"}

	t.Run("room does not exist", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "missing").Return(database.Room{}, sql.ErrNoRows)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		err := reg.JoinRoom("missing", user)
		assert.ErrorIs(t, err, ErrRoomDoesNotExist)
	})

	t.Run("user already inside", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "room-1").Return(database.Room{Uuid: "room-1"}, nil)
		db.On("IsRoomMember", "room-1", "user-2").Return(true)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		err := reg.JoinRoom("room-1", user)
		assert.ErrorIs(t, err, ErrUserAlreadyInside, "repeat join must fail")
	})

	t.Run("successful join", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "room-1").Return(database.Room{Uuid: "room-1"}, nil)
		db.On("IsRoomMember", "room-1", "user-2").Return(false)
		db.On("AddRoomMember", "room-1", "user-2").Return(nil)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		err := reg.JoinRoom("room-1", user)
		assert.NoError(t, err)
	})
}

func TestLeaveRoom(t *testing.T) {
	user := types.UserSnapshot{Uuid: "user-2", DisplayName: "bob"}

	t.Run("user is not a member", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "room-1").Return(database.Room{Uuid: "room-1"}, nil)
		db.On("IsRoomMember", "room-1", "user-2").Return(false)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		err := reg.LeaveRoom("room-1", user)
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
	})

	t.Run("successful leave", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "room-1").Return(database.Room{Uuid: "room-1"}, nil)
		db.On("IsRoomMember", "room-1", "user-2").Return(true)
		db.On("RemoveRoomMember", "room-1", "user-2").Return(nil)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		err := reg.LeaveRoom("room-1", user)
		assert.NoError(t, err)
	})
}

func TestGetRoom(t *testing.T) {
	t.Run("room does not exist", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "missing").Return(database.Room{}, sql.ErrNoRows)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		_, err := reg.GetRoom("missing")
		assert.ErrorIs(t, err, ErrRoomDoesNotExist)
	})

	t.Run("returns room with members", func(t *testing.T) {
		db := &database.MockRoomcastRepository{}
		defer db.AssertExpectations(t)

		db.On("GetRoom", "room-1").Return(database.Room{Uuid: "room-1", Name: "general"}, nil)
		db.On("ListRoomMembers", "room-1").Return([]database.Account{
			{Uuid: "user-1", DisplayName: "alice", Avatar: "A"},
			{Uuid: "user-2", DisplayName: "bob", Avatar: "B"},
		}, nil)

		reg := NewRoomRegistry(testutil.TestLogger(t), db)
		room, err := reg.GetRoom("room-1")
		assert.NoError(t, err)
		assert.Equal(t, "general", room.Name)
		assert.Len(t, room.Members, 2, "expected both members in metadata")
		assert.Equal(t, "alice", room.Members[0].DisplayName)
	})
}

func TestJoinedChannels(t *testing.T) {
	db := &database.MockRoomcastRepository{}
	defer db.AssertExpectations(t)

	db.On("ListJoinedRooms", "user-1").Return([]database.Room{
		{Uuid: "room-1", Name: "general"},
		{Uuid: "room-2", Name: "random"},
	}, nil)

	reg := NewRoomRegistry(testutil.TestLogger(t), db)
	channels, err := reg.JoinedChannels("user-1")
	assert.NoError(t, err)
	assert.Equal(t, []types.ChannelRef{
		{Uuid: "room-1", Name: "general"},
		{Uuid: "room-2", Name: "random"},
	}, channels, "expected channels in membership order")
}
