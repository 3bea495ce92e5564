package database

import (
	"github.com/stretchr/testify/mock"
)

type MockRoomcastRepository struct {
	mock.Mock
}

func (m *MockRoomcastRepository) CreateAccount(params CreateAccountParams) (Account, error) {
	args := m.Called(params)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRoomcastRepository) GetAccountByUuid(uuid string) (Account, error) {
	args := m.Called(uuid)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRoomcastRepository) GetAccountByEmail(email string) (Account, error) {
	args := m.Called(email)
	return args.Get(0).(Account), args.Error(1)
}
func (m *MockRoomcastRepository) CreateRoom(room Room, founderUuid string) (Room, error) {
	args := m.Called(room, founderUuid)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomcastRepository) GetRoom(uuid string) (Room, error) {
	args := m.Called(uuid)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRoomcastRepository) AddRoomMember(roomUuid, accountUuid string) error {
	args := m.Called(roomUuid, accountUuid)
	return args.Error(0)
}
func (m *MockRoomcastRepository) RemoveRoomMember(roomUuid, accountUuid string) error {
	args := m.Called(roomUuid, accountUuid)
	return args.Error(0)
}
func (m *MockRoomcastRepository) IsRoomMember(roomUuid, accountUuid string) bool {
	args := m.Called(roomUuid, accountUuid)
	return args.Bool(0)
}
func (m *MockRoomcastRepository) ListRoomMembers(roomUuid string) ([]Account, error) {
	args := m.Called(roomUuid)
	return args.Get(0).([]Account), args.Error(1)
}
func (m *MockRoomcastRepository) ListJoinedRooms(accountUuid string) ([]Room, error) {
	args := m.Called(accountUuid)
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockRoomcastRepository) CreateMessage(msg Message) error {
	args := m.Called(msg)
	return args.Error(0)
}
func (m *MockRoomcastRepository) GetMessages(channelUuid string) ([]Message, error) {
	args := m.Called(channelUuid)
	return args.Get(0).([]Message), args.Error(1)
}
