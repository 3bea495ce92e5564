package registry

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/rvermeulen/roomcast/internal/database"
	"github.com/rvermeulen/roomcast/internal/types"
)

// RoomRegistry owns room metadata and membership semantics. The durable
// store is the source of truth; nothing here is considered joined until
// the write has succeeded.
type RoomRegistry struct {
	log *log.Logger
	db  database.RoomcastRepository
}

func NewRoomRegistry(logger *log.Logger, db database.RoomcastRepository) *RoomRegistry {
	return &RoomRegistry{
		log: logger,
		db:  db,
	}
}

// CreateRoom persists a new room with the founder as its first member
// and returns the room's uuid.
func (r *RoomRegistry) CreateRoom(name string, founder types.UserSnapshot) (string, error) {
	room := database.Room{
		Uuid:      uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	created, err := r.db.CreateRoom(room, founder.Uuid)
	if err != nil {
		return "", err
	}

	r.log.Printf("created room %q (%s) founded by %q", created.Name, created.Uuid, founder.DisplayName)
	return created.Uuid, nil
}

// JoinRoom is not idempotent: joining a room the user is already a
// member of fails with ErrUserAlreadyInside.
func (r *RoomRegistry) JoinRoom(roomUuid string, user types.UserSnapshot) error {
	if _, err := r.db.GetRoom(roomUuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomDoesNotExist
		}
		return err
	}

	if r.db.IsRoomMember(roomUuid, user.Uuid) {
		return ErrUserAlreadyInside
	}

	return r.db.AddRoomMember(roomUuid, user.Uuid)
}

func (r *RoomRegistry) LeaveRoom(roomUuid string, user types.UserSnapshot) error {
	if _, err := r.db.GetRoom(roomUuid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomDoesNotExist
		}
		return err
	}

	if !r.db.IsRoomMember(roomUuid, user.Uuid) {
		return ErrUserDoesNotExist
	}

	return r.db.RemoveRoomMember(roomUuid, user.Uuid)
}

func (r *RoomRegistry) GetRoom(roomUuid string) (types.Room, error) {
	dbRoom, err := r.db.GetRoom(roomUuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrRoomDoesNotExist
		}
		return types.Room{}, err
	}

	dbMembers, err := r.db.ListRoomMembers(roomUuid)
	if err != nil {
		return types.Room{}, err
	}

	members := make([]types.UserSnapshot, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = types.UserSnapshot{
			Uuid:        m.Uuid,
			DisplayName: m.DisplayName,
			Avatar:      m.Avatar,
		}
	}

	return types.Room{
		Uuid:      dbRoom.Uuid,
		Name:      dbRoom.Name,
		Members:   members,
		CreatedAt: dbRoom.CreatedAt,
	}, nil
}

// JoinedChannels returns the user's persisted room memberships ordered
// by join time.
func (r *RoomRegistry) JoinedChannels(accountUuid string) ([]types.ChannelRef, error) {
	dbRooms, err := r.db.ListJoinedRooms(accountUuid)
	if err != nil {
		return nil, err
	}

	channels := make([]types.ChannelRef, len(dbRooms))
	for i, room := range dbRooms {
		channels[i] = types.ChannelRef{
			Uuid: room.Uuid,
			Name: room.Name,
		}
	}

	return channels, nil
}
