package network

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Inbound payloads.

type CreateRoomRequest struct {
	Scoring string `json:"scoring,omitempty"`
}

type SelectContentRequest struct {
	RoomCode  string `json:"room_code"`
	ContentID string `json:"content_id"`
}

type JoinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

// RoomRequest carries only a room code (advance, host reset, leave).
type RoomRequest struct {
	RoomCode string `json:"room_code"`
}

type SubmitAnswerRequest struct {
	RoomCode string     `json:"room_code"`
	Answer   AnswerText `json:"answer"`
}

type BuzzRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name,omitempty"`
}

// AnswerText accepts either a JSON string or a JSON number and keeps the raw text.
type AnswerText string

func (a *AnswerText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AnswerText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*a = AnswerText(n.String())
	return nil
}

// Outbound payloads owned by the server layer. Round events live with the room.

type RoomCreated struct {
	RoomCode string `json:"room_code"`
	Scoring  string `json:"scoring"`
}

type Joined struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rejoined bool   `json:"rejoined"`
}

type ContentSelected struct {
	RoomCode             string `json:"room_code"`
	ContentID            string `json:"content_id"`
	Title                string `json:"title"`
	Questions            int    `json:"questions"`
	RoundDurationSeconds int    `json:"round_duration_seconds"`
}

type ErrorNotice struct {
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Request string `json:"request,omitempty"`
}
