package room

import (
	"time"

	"github.com/wfunc/quizroom/judge"
)

// Sender delivers room events to connections. Implementations must not block
// and must not call back into the room; audiences are resolved by the room.
type Sender interface {
	ToConnection(identity string, msgID uint16, payload any)
	ToHost(code, hostIdentity string, msgID uint16, payload any)
	ToRoom(code string, identities []string, msgID uint16, payload any)
}

type nopSender struct{}

func (nopSender) ToConnection(string, uint16, any)     {}
func (nopSender) ToHost(string, string, uint16, any)   {}
func (nopSender) ToRoom(string, []string, uint16, any) {}

// Hooks observe room outcomes. They run after the room lock is released.
type Hooks struct {
	OnRoundResolved func(RoundSummary)
	OnGameOver      func(GameSummary)
	OnBuzz          func(code string)
	OnRoomClosed    func(ClosedRoom)
}

// ClosedRoom identifies a torn-down room instance. Its code may already
// belong to a new room by the time hooks run, so Members names the
// identities that were actually in it: the host and every player.
type ClosedRoom struct {
	Code    string
	Reason  string
	Members []string
}

// Resolution triggers.
const (
	TriggerAllSubmitted = "all_submitted"
	TriggerTimer        = "timer"
	TriggerDisconnect   = "disconnect"
)

type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type PlayerView struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

type RosterEvent struct {
	RoomCode string       `json:"room_code"`
	Players  []PlayerView `json:"players"`
}

// QuestionEvent never carries the correct answer.
type QuestionEvent struct {
	RoomCode        string    `json:"room_code"`
	QuestionIndex   int       `json:"question_index"`
	Total           int       `json:"total"`
	Prompt          string    `json:"prompt"`
	DurationSeconds int       `json:"duration_seconds"`
	Deadline        time.Time `json:"deadline"`
}

type AnswerEntry struct {
	Name   string `json:"name"`
	Answer string `json:"answer"`
	Valid  bool   `json:"valid"`
}

type ResultsEvent struct {
	RoomCode      string        `json:"room_code"`
	QuestionIndex int           `json:"question_index"`
	Prompt        string        `json:"prompt"`
	CorrectAnswer float64       `json:"correct_answer"`
	Winner        string        `json:"winner,omitempty"`
	Trigger       string        `json:"trigger"`
	Answers       []AnswerEntry `json:"answers"`
	Scoreboard    []Standing    `json:"scoreboard"`
}

type GameOverEvent struct {
	RoomCode   string     `json:"room_code"`
	Questions  int        `json:"questions"`
	Scoreboard []Standing `json:"scoreboard"`
}

type BuzzEvent struct {
	RoomCode string `json:"room_code"`
	judge.Buzz
}

// RoomEvent is the payload of buzzer-reset and host-left.
type RoomEvent struct {
	RoomCode string `json:"room_code"`
}

type RoomClosedEvent struct {
	RoomCode string `json:"room_code"`
	Reason   string `json:"reason"`
}

type RoundSummary struct {
	RoomCode      string `json:"room_code"`
	Scoring       string `json:"scoring"`
	QuestionIndex int    `json:"question_index"`
	Trigger       string `json:"trigger"`
	Winner        string `json:"winner,omitempty"`
	Submissions   int    `json:"submissions"`
}

type GameSummary struct {
	RoomCode   string     `json:"room_code"`
	ContentID  string     `json:"content_id"`
	Scoring    string     `json:"scoring"`
	Questions  int        `json:"questions"`
	Scoreboard []Standing `json:"scoreboard"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    time.Time  `json:"ended_at"`
}

// Snapshot is a read-only view of a live room.
type Snapshot struct {
	Code             string    `json:"code"`
	Scoring          string    `json:"scoring"`
	Mode             string    `json:"mode"`
	QuestionIndex    int       `json:"question_index"`
	ContentID        string    `json:"content_id,omitempty"`
	Players          int       `json:"players"`
	ConnectedPlayers int       `json:"connected_players"`
	HostConnected    bool      `json:"host_connected"`
	CreatedAt        time.Time `json:"created_at"`
}
