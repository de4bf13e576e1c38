package main

import (
	"testing"

	"github.com/wfunc/quizroom/network"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		line    string
		msgID   uint16
		wantErr bool
	}{
		{"create buzzer", network.MsgTypeCreateRoom, false},
		{"select sample", network.MsgTypeSelectContent, false},
		{"select", 0, true},
		{"join 1234 Ann Lee", network.MsgTypeJoinRoom, false},
		{"join 1234", 0, true},
		{"next", network.MsgTypeAdvance, false},
		{"answer 42", network.MsgTypeSubmitAnswer, false},
		{"answer", 0, true},
		{"buzz", network.MsgTypeBuzz, false},
		{"reset", network.MsgTypeHostReset, false},
		{"leave", network.MsgTypeLeaveRoom, false},
		{"spin", 0, true},
		{"   ", 0, false},
	}
	for _, tt := range tests {
		msgID, _, err := command(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("command(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
		}
		if msgID != tt.msgID {
			t.Errorf("command(%q) msgID = %d, want %d", tt.line, msgID, tt.msgID)
		}
	}

	_, payload, _ := command("join 1234 Ann Lee")
	req := payload.(network.JoinRoomRequest)
	if req.RoomCode != "1234" || req.Name != "Ann Lee" {
		t.Errorf("join payload = %+v", req)
	}
}
