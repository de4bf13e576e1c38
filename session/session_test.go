package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/quizroom/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct {
	sent []uint16
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, msgID)
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestNewSession_GeneratesID(t *testing.T) {
	a := NewSession("", &MockConnection{})
	b := NewSession("", &MockConnection{})
	if a.ID == "" || b.ID == "" {
		t.Fatal("NewSession should assign an id when none is given")
	}
	if a.ID == b.ID {
		t.Fatal("generated ids should be unique")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get(sessionID); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_ClearRoomCode(t *testing.T) {
	sess := NewSession("session1", &MockConnection{})
	sess.SetRoomCode("1234")

	if sess.ClearRoomCode("5678") {
		t.Error("ClearRoomCode should leave a different room alone")
	}
	if sess.RoomCode() != "1234" {
		t.Errorf("RoomCode() = %q, want 1234", sess.RoomCode())
	}
	if !sess.ClearRoomCode("1234") {
		t.Error("ClearRoomCode should clear the matching room")
	}
	if sess.RoomCode() != "" {
		t.Errorf("RoomCode() = %q, want empty", sess.RoomCode())
	}
}

func TestSession_SendUsesConnection(t *testing.T) {
	conn := &MockConnection{}
	sess := NewSession("s", conn)

	if err := sess.Send(network.MsgTypeJoined, nil); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if len(conn.sent) != 1 || conn.sent[0] != network.MsgTypeJoined {
		t.Errorf("sent = %v, want [%d]", conn.sent, network.MsgTypeJoined)
	}
}
