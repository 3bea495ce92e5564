package database

import (
	"time"
)

func (db *PgRoomcastRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (uuid, display_name, email, password_hash, avatar, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING uuid, display_name, email, avatar, created_at",
		params.Uuid,
		params.DisplayName,
		params.EmailAddress,
		params.PasswordHash,
		params.Avatar,
		time.Now().UTC(),
	)

	var a Account
	err := res.Scan(
		&a.Uuid,
		&a.DisplayName,
		&a.EmailAddress,
		&a.Avatar,
		&a.CreatedAt,
	)

	return a, storeErr("create account", err)
}

func (db *PgRoomcastRepository) GetAccountByUuid(uuid string) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT uuid, display_name, email, avatar, created_at FROM accounts "+
			"WHERE uuid = $1 LIMIT 1",
		uuid,
	)

	var a Account
	err := row.Scan(
		&a.Uuid,
		&a.DisplayName,
		&a.EmailAddress,
		&a.Avatar,
		&a.CreatedAt,
	)

	return a, storeErr("get account", err)
}

func (db *PgRoomcastRepository) GetAccountByEmail(email string) (Account, error) {
	row := db.conn.QueryRow(
		"SELECT uuid, display_name, email, password_hash, avatar, created_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var a Account
	err := row.Scan(
		&a.Uuid,
		&a.DisplayName,
		&a.EmailAddress,
		&a.PasswordHash,
		&a.Avatar,
		&a.CreatedAt,
	)

	return a, storeErr("get account by email", err)
}

// CreateRoom inserts the room and its founder membership in one
// transaction, so a persisted room always has at least one member.
func (db *PgRoomcastRepository) CreateRoom(room Room, founderUuid string) (Room, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Room{}, storeErr("create room", err)
	}
	defer tx.Rollback()

	res := tx.QueryRow(
		"INSERT INTO rooms (uuid, name, created_at) "+
			"VALUES ($1, $2, $3) RETURNING uuid, name, created_at",
		room.Uuid,
		room.Name,
		room.CreatedAt,
	)

	var created Room
	if err := res.Scan(&created.Uuid, &created.Name, &created.CreatedAt); err != nil {
		return Room{}, storeErr("create room", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO room_members (room_uuid, account_uuid, created_at) VALUES ($1, $2, $3)",
		created.Uuid,
		founderUuid,
		time.Now().UTC(),
	); err != nil {
		return Room{}, storeErr("create room member", err)
	}

	if err := tx.Commit(); err != nil {
		return Room{}, storeErr("create room", err)
	}

	return created, nil
}

func (db *PgRoomcastRepository) GetRoom(uuid string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT uuid, name, created_at FROM rooms "+
			"WHERE uuid = $1 LIMIT 1",
		uuid,
	)

	var room Room
	err := row.Scan(
		&room.Uuid,
		&room.Name,
		&room.CreatedAt,
	)

	return room, storeErr("get room", err)
}

func (db *PgRoomcastRepository) AddRoomMember(roomUuid, accountUuid string) error {
	_, err := db.conn.Exec(
		"INSERT INTO room_members (room_uuid, account_uuid, created_at) VALUES ($1, $2, $3)",
		roomUuid,
		accountUuid,
		time.Now().UTC(),
	)

	return storeErr("add room member", err)
}

func (db *PgRoomcastRepository) RemoveRoomMember(roomUuid, accountUuid string) error {
	_, err := db.conn.Exec(
		"DELETE FROM room_members WHERE room_uuid = $1 AND account_uuid = $2",
		roomUuid,
		accountUuid,
	)

	return storeErr("remove room member", err)
}

func (db *PgRoomcastRepository) IsRoomMember(roomUuid, accountUuid string) bool {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM room_members WHERE room_uuid = $1 AND account_uuid = $2",
		roomUuid,
		accountUuid,
	)

	var count int
	if err := row.Scan(&count); err != nil {
		return false
	}

	return count > 0
}

func (db *PgRoomcastRepository) ListRoomMembers(roomUuid string) ([]Account, error) {
	rows, err := db.conn.Query(
		"SELECT a.uuid, a.display_name, a.avatar FROM accounts a "+
			"JOIN room_members m ON m.account_uuid = a.uuid "+
			"WHERE m.room_uuid = $1 ORDER BY m.created_at ASC",
		roomUuid,
	)
	if err != nil {
		return nil, storeErr("list room members", err)
	}
	defer rows.Close()

	var members []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Uuid, &a.DisplayName, &a.Avatar); err != nil {
			return nil, storeErr("list room members", err)
		}
		members = append(members, a)
	}

	return members, storeErr("list room members", rows.Err())
}

func (db *PgRoomcastRepository) ListJoinedRooms(accountUuid string) ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT r.uuid, r.name, r.created_at FROM rooms r "+
			"JOIN room_members m ON m.room_uuid = r.uuid "+
			"WHERE m.account_uuid = $1 ORDER BY m.created_at ASC",
		accountUuid,
	)
	if err != nil {
		return nil, storeErr("list joined rooms", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.Uuid, &r.Name, &r.CreatedAt); err != nil {
			return nil, storeErr("list joined rooms", err)
		}
		rooms = append(rooms, r)
	}

	return rooms, storeErr("list joined rooms", rows.Err())
}

func (db *PgRoomcastRepository) CreateMessage(msg Message) error {
	_, err := db.conn.Exec(
		"INSERT INTO messages (uuid, channel_uuid, sender_uuid, sender_name, sender_avatar, body, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7)",
		msg.Uuid,
		msg.ChannelUuid,
		msg.SenderUuid,
		msg.SenderName,
		msg.SenderAvatar,
		msg.Body,
		msg.CreatedAt,
	)

	return storeErr("create message", err)
}

// GetMessages returns the channel's full history ordered by created_at
// ascending, ties broken by uuid.
func (db *PgRoomcastRepository) GetMessages(channelUuid string) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT uuid, channel_uuid, sender_uuid, sender_name, sender_avatar, body, created_at "+
			"FROM messages WHERE channel_uuid = $1 ORDER BY created_at ASC, uuid ASC",
		channelUuid,
	)
	if err != nil {
		return nil, storeErr("get messages", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.Uuid,
			&m.ChannelUuid,
			&m.SenderUuid,
			&m.SenderName,
			&m.SenderAvatar,
			&m.Body,
			&m.CreatedAt,
		); err != nil {
			return nil, storeErr("get messages", err)
		}
		messages = append(messages, m)
	}

	return messages, storeErr("get messages", rows.Err())
}
