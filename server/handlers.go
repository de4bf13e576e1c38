package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wfunc/quizroom/content"
	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/network"
	"github.com/wfunc/quizroom/room"
	"github.com/wfunc/quizroom/session"
)

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	event := network.MsgName(packet.MsgID)
	s.monitor.IncMessagesReceived(event)
	defer func() { s.monitor.ObserveMessageLatency(time.Since(start)) }()

	sess.Touch()

	var err error
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
	case network.MsgTypeCreateRoom:
		err = s.handleCreateRoom(sess, packet)
	case network.MsgTypeSelectContent:
		err = s.handleSelectContent(sess, packet)
	case network.MsgTypeJoinRoom:
		err = s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		err = s.handleLeaveRoom(sess, packet)
	case network.MsgTypeAdvance:
		err = s.handleAdvance(sess, packet)
	case network.MsgTypeSubmitAnswer:
		err = s.handleSubmit(sess, packet)
	case network.MsgTypeBuzz:
		err = s.handleBuzz(sess, packet)
	case network.MsgTypeHostReset:
		err = s.handleHostReset(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		err = fmt.Errorf("%w: unknown message type %d", room.ErrValidation, packet.MsgID)
	}

	if err != nil {
		s.sendError(sess, event, err)
	}
}

func decode(packet *network.Packet, v any) error {
	if len(packet.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(packet.Data, v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", room.ErrValidation, err)
	}
	return nil
}

// roomCodeFor prefers the code in the request and falls back to the session's room.
func roomCodeFor(sess *session.Session, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if code := sess.RoomCode(); code != "" {
		return code, nil
	}
	return "", fmt.Errorf("%w: no room code given", room.ErrRoomNotFound)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) error {
	var req network.CreateRoomRequest
	if err := decode(packet, &req); err != nil {
		return err
	}

	r, err := s.registry.CreateRoom(sess.GetID(), req.Scoring)
	if err != nil {
		return err
	}
	s.disconnect(sess)
	sess.SetRoomCode(r.Code)
	s.monitor.SetActiveRooms(s.registry.Count())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.Code)
	s.gateway.ToConnection(sess.GetID(), network.MsgTypeRoomCreated, network.RoomCreated{
		RoomCode: r.Code,
		Scoring:  string(r.Scoring),
	})
	return nil
}

func (s *GameServer) handleSelectContent(sess *session.Session, packet *network.Packet) error {
	var req network.SelectContentRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	code, err := roomCodeFor(sess, req.RoomCode)
	if err != nil {
		return err
	}

	set, err := s.registry.SelectContent(code, sess.GetID(), req.ContentID)
	if err != nil {
		return err
	}
	s.gateway.ToConnection(sess.GetID(), network.MsgTypeContentSelected, network.ContentSelected{
		RoomCode:             code,
		ContentID:            set.ID,
		Title:                set.Title,
		Questions:            set.Len(),
		RoundDurationSeconds: set.RoundDurationSeconds,
	})
	return nil
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) error {
	var req network.JoinRoomRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	if req.RoomCode == "" {
		return fmt.Errorf("%w: room code is required", room.ErrValidation)
	}

	res, err := s.registry.Join(req.RoomCode, sess.GetID(), req.Name)
	if err != nil {
		return err
	}
	if sess.RoomCode() != req.RoomCode {
		s.disconnect(sess)
		sess.SetRoomCode(req.RoomCode)
	}

	logger.Log.Infof("Session %s joined room %s as %s", sess.GetID(), req.RoomCode, res.Name)
	s.gateway.ToConnection(sess.GetID(), network.MsgTypeJoined, network.Joined{
		RoomCode: res.RoomCode,
		Name:     res.Name,
		Score:    res.Score,
		Rejoined: res.Rejoined,
	})
	return nil
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) error {
	var req network.RoomRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	if req.RoomCode != "" && req.RoomCode != sess.RoomCode() {
		return fmt.Errorf("%w: not in room %s", room.ErrInvalidState, req.RoomCode)
	}
	s.disconnect(sess)
	return nil
}

func (s *GameServer) handleAdvance(sess *session.Session, packet *network.Packet) error {
	var req network.RoomRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	code, err := roomCodeFor(sess, req.RoomCode)
	if err != nil {
		return err
	}
	return s.registry.Advance(code, sess.GetID())
}

func (s *GameServer) handleSubmit(sess *session.Session, packet *network.Packet) error {
	var req network.SubmitAnswerRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	code, err := roomCodeFor(sess, req.RoomCode)
	if err != nil {
		return err
	}
	return s.registry.Submit(code, sess.GetID(), string(req.Answer))
}

// handleBuzz ignores any name in the payload; the registered player name is used.
func (s *GameServer) handleBuzz(sess *session.Session, packet *network.Packet) error {
	var req network.BuzzRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	code, err := roomCodeFor(sess, req.RoomCode)
	if err != nil {
		return err
	}
	_, err = s.registry.Buzz(code, sess.GetID())
	return err
}

func (s *GameServer) handleHostReset(sess *session.Session, packet *network.Packet) error {
	var req network.RoomRequest
	if err := decode(packet, &req); err != nil {
		return err
	}
	code, err := roomCodeFor(sess, req.RoomCode)
	if err != nil {
		return err
	}
	return s.registry.Reset(code, sess.GetID())
}

// Error notice codes.
const (
	CodeRoomNotFound       = "room_not_found"
	CodeUnauthorized       = "unauthorized"
	CodeAlreadyJoined      = "already_joined"
	CodeInvalidState       = "invalid_state"
	CodeNoContentAvailable = "no_content_available"
	CodeInvalidContent     = "invalid_content"
	CodeLoadError          = "load_error"
	CodeValidation         = "validation_error"
	CodeRegistryFull       = "registry_full"
	CodeInternal           = "internal_error"
)

func errorCode(err error) string {
	var loadErr *content.LoadError
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, room.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, room.ErrAlreadyJoined):
		return CodeAlreadyJoined
	case errors.Is(err, room.ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, room.ErrNoContentAvailable):
		return CodeNoContentAvailable
	case errors.Is(err, content.ErrUnknownContent):
		return CodeInvalidContent
	case errors.As(err, &loadErr):
		return CodeLoadError
	case errors.Is(err, room.ErrValidation):
		return CodeValidation
	case errors.Is(err, room.ErrRegistryFull):
		return CodeRegistryFull
	}
	return CodeInternal
}

// sendError reports a failed request to the caller only.
func (s *GameServer) sendError(sess *session.Session, request string, err error) {
	code := errorCode(err)
	s.monitor.ErrorNotice(code)
	if code == CodeInternal {
		logger.Log.Errorw("Request failed", "session", sess.GetID(), "request", request, "error", err)
	} else {
		logger.Log.Debugw("Request rejected", "session", sess.GetID(), "request", request, "code", code, "reason", err.Error())
	}
	s.gateway.ToConnection(sess.GetID(), network.MsgTypeErrorNotice, network.ErrorNotice{
		Code:    code,
		Reason:  err.Error(),
		Request: request,
	})
}
