package network

// Inbound message ids (client -> server).
const (
	MsgTypeHeartbeat     = 1
	MsgTypeJoinRoom      = 101
	MsgTypeLeaveRoom     = 102
	MsgTypeCreateRoom    = 103
	MsgTypeSelectContent = 104
	MsgTypeAdvance       = 201
	MsgTypeSubmitAnswer  = 202
	MsgTypeBuzz          = 203
	MsgTypeHostReset     = 204
)

// Outbound message ids (server -> client).
const (
	MsgTypeRoomCreated     = 301
	MsgTypeJoined          = 302
	MsgTypeRosterUpdated   = 303
	MsgTypeNewQuestion     = 304
	MsgTypeBuzzNotify      = 305
	MsgTypeRoundResults    = 306
	MsgTypeGameOver        = 307
	MsgTypeBuzzerReset     = 308
	MsgTypeContentSelected = 309
	MsgTypeHostLeft        = 310
	MsgTypeRoomClosed      = 311
	MsgTypeErrorNotice     = 399
)

var msgNames = map[uint16]string{
	MsgTypeHeartbeat:       "heartbeat",
	MsgTypeJoinRoom:        "join-room",
	MsgTypeLeaveRoom:       "leave-room",
	MsgTypeCreateRoom:      "create-room",
	MsgTypeSelectContent:   "select-content",
	MsgTypeAdvance:         "advance-question",
	MsgTypeSubmitAnswer:    "submit-answer",
	MsgTypeBuzz:            "buzz",
	MsgTypeHostReset:       "host-reset",
	MsgTypeRoomCreated:     "room-created",
	MsgTypeJoined:          "joined",
	MsgTypeRosterUpdated:   "roster-updated",
	MsgTypeNewQuestion:     "new-question",
	MsgTypeBuzzNotify:      "buzz-notification",
	MsgTypeRoundResults:    "round-results",
	MsgTypeGameOver:        "game-over",
	MsgTypeBuzzerReset:     "buzzer-reset",
	MsgTypeContentSelected: "content-selected",
	MsgTypeHostLeft:        "host-left",
	MsgTypeRoomClosed:      "room-closed",
	MsgTypeErrorNotice:     "error-notice",
}

// MsgName returns the event name for a message id, or "unknown".
func MsgName(msgID uint16) string {
	if name, ok := msgNames[msgID]; ok {
		return name
	}
	return "unknown"
}
