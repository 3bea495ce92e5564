package database

type RoomcastRepository interface {
	CreateAccount(params CreateAccountParams) (Account, error)
	GetAccountByUuid(uuid string) (Account, error)
	GetAccountByEmail(email string) (Account, error)
	CreateRoom(room Room, founderUuid string) (Room, error)
	GetRoom(uuid string) (Room, error)
	AddRoomMember(roomUuid, accountUuid string) error
	RemoveRoomMember(roomUuid, accountUuid string) error
	IsRoomMember(roomUuid, accountUuid string) bool
	ListRoomMembers(roomUuid string) ([]Account, error)
	ListJoinedRooms(accountUuid string) ([]Room, error)
	CreateMessage(msg Message) error
	GetMessages(channelUuid string) ([]Message, error)
}
