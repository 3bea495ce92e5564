package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rvermeulen/roomcast/internal/database"
	"github.com/rvermeulen/roomcast/internal/registry"
	"github.com/rvermeulen/roomcast/internal/server"
	"github.com/rvermeulen/roomcast/internal/types"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type RoomMembershipRequest struct {
	RoomUuid string `json:"room_uuid"`
}

func (s *RoomcastApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// currentUser resolves the authenticated request into a user snapshot.
func (s *RoomcastApp) currentUser(r *http.Request) (types.UserSnapshot, *ApiError) {
	userUuid, ok := UserUuid(r.Context())
	if !ok {
		return types.UserSnapshot{}, NewUnauthorizedError()
	}

	acc, err := s.db.GetAccountByUuid(userUuid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.UserSnapshot{}, NewNotFoundError()
		}
		return types.UserSnapshot{}, NewInternalServerError(err)
	}

	return types.UserSnapshot{
		Uuid:        acc.Uuid,
		DisplayName: acc.DisplayName,
		Avatar:      acc.Avatar,
	}, nil
}

func avatarInitial(displayName string) string {
	r, size := utf8.DecodeRuneInString(displayName)
	if size == 0 {
		return ""
	}
	return strings.ToUpper(string(r))
}

func (s *RoomcastApp) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.DisplayName == "" || req.Email == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateAccountParams{
		Uuid:         uuid.NewString(),
		DisplayName:  req.DisplayName,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
		Avatar:       avatarInitial(req.DisplayName),
	}

	newAccount, err := s.db.CreateAccount(params)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.UserSnapshot{
		Uuid:        newAccount.Uuid,
		DisplayName: newAccount.DisplayName,
		Avatar:      newAccount.Avatar,
	})
}

func (s *RoomcastApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Email == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	acc, err := s.db.GetAccountByEmail(lr.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(acc.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createJwtForSession(acc.Uuid, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))

	s.writeJson(w, http.StatusOK, types.UserSnapshot{
		Uuid:        acc.Uuid,
		DisplayName: acc.DisplayName,
		Avatar:      acc.Avatar,
	})
}

func (s *RoomcastApp) session(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, user)
}

func (s *RoomcastApp) logout(w http.ResponseWriter, _ *http.Request) {
	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createJwtCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *RoomcastApp) createRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	founder, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomUuid, err := s.registry.CreateRoom(req.Name, founder)
	if err != nil {
		s.log.Println("create room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// subscribe the founder's live connections right away
	s.cs.NotifyJoined(founder.Uuid, roomUuid)

	s.writeJson(w, http.StatusCreated, types.ChannelRef{
		Uuid: roomUuid,
		Name: req.Name,
	})
}

func (s *RoomcastApp) getRoom(w http.ResponseWriter, r *http.Request) {
	roomUuid := r.URL.Query().Get("id")
	if roomUuid == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.registry.GetRoom(roomUuid)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, registry.ErrRoomDoesNotExist) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, room)
}

func (s *RoomcastApp) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomUuid == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.registry.JoinRoom(req.RoomUuid, user); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, registry.ErrRoomDoesNotExist):
			errResp = NewNotFoundError()
		case errors.Is(err, registry.ErrUserAlreadyInside):
			errResp = NewConflictError(err.Error())
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.cs.NotifyJoined(user.Uuid, req.RoomUuid)

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *RoomcastApp) leaveRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomMembershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomUuid == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.registry.LeaveRoom(req.RoomUuid, user); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, registry.ErrRoomDoesNotExist):
			errResp = NewNotFoundError()
		case errors.Is(err, registry.ErrUserDoesNotExist):
			errResp = NewConflictError(err.Error())
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.cs.NotifyLeft(user.Uuid, req.RoomUuid)

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *RoomcastApp) getChannels(w http.ResponseWriter, r *http.Request) {
	userUuid, ok := UserUuid(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	channels, err := s.registry.JoinedChannels(userUuid)
	if err != nil {
		s.log.Println("joined channels:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, channels)
}

func (s *RoomcastApp) getMessages(w http.ResponseWriter, r *http.Request) {
	channelUuid := r.URL.Query().Get("channel")
	if channelUuid == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.registry.GetRoom(channelUuid); err != nil {
		var errResp *ApiError
		if errors.Is(err, registry.ErrRoomDoesNotExist) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetMessages(channelUuid)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var messages []types.ChatMessage
	for _, m := range dbMessages {
		messages = append(messages, types.ChatMessage{
			Uuid:        m.Uuid,
			ChannelUuid: m.ChannelUuid,
			Sender: types.UserSnapshot{
				Uuid:        m.SenderUuid,
				DisplayName: m.SenderName,
				Avatar:      m.SenderAvatar,
			},
			Body:      m.Body,
			CreatedAt: m.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *RoomcastApp) serveWs(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(user, conn, s.cs, s.log)

	if err := s.cs.RegisterClient(client); err != nil {
		s.log.Println("register client:", err)
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}
