package room

import (
	"sync/atomic"
	"time"

	"github.com/wfunc/quizroom/content"
	"github.com/wfunc/quizroom/judge"
	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/network"
	"github.com/wfunc/quizroom/state"
)

type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeActive   Mode = "active"
	ModeJudged   Mode = "judged"
	ModeGameOver Mode = "game_over"
)

// round is the per-room question state. Fields are guarded by the room lock
// except resolved, which is the single-resolution guard for the current question.
type round struct {
	index       int
	set         *content.Set
	submissions *judge.Submissions
	resolved    atomic.Bool
	token       uint64
	timerID     int64
	deadline    time.Time
	trigger     string
}

func newRound() *round {
	return &round{index: -1, submissions: judge.NewSubmissions()}
}

func (rd *round) question() content.Question {
	return rd.set.Questions[rd.index]
}

type idleState struct {
	state.Base
}

// activeState shows the question, accepts submissions and runs the deadline timer.
type activeState struct {
	state.Base
	room *Room
}

func (s *activeState) OnEnter() {
	r := s.room
	rd := r.round

	rd.submissions.Clear()
	rd.resolved.Store(false)
	rd.trigger = ""
	rd.token++
	token := rd.token

	duration := rd.set.RoundDuration()
	rd.deadline = r.clock.Now().Add(duration)
	rd.timerID = r.timers.AddTimer(duration, 0, func() { r.expire(token) })

	q := rd.question()
	r.toRoom(network.MsgTypeNewQuestion, QuestionEvent{
		RoomCode:        r.Code,
		QuestionIndex:   rd.index,
		Total:           rd.set.Len(),
		Prompt:          q.Prompt,
		DurationSeconds: rd.set.RoundDurationSeconds,
		Deadline:        rd.deadline,
	})
	logger.Log.Debugw("Round started", "room", r.Code, "question", rd.index, "deadline", rd.deadline)
}

func (s *activeState) OnExit() {
	s.room.cancelTimer()
}

// judgedState scores the question that just closed and reports to the host.
type judgedState struct {
	state.Base
	room *Room
}

func (s *judgedState) OnEnter() {
	r := s.room
	rd := r.round
	q := rd.question()

	subs := rd.submissions.List()
	verdict := r.policy.Decide(judge.Input{
		QuestionIndex: rd.index,
		CorrectAnswer: q.Answer,
		Submissions:   subs,
		Buzzes:        r.buzzer.Log(),
	})

	winnerName := ""
	if verdict.HasWinner() {
		if p, ok := r.participants.get(verdict.Winner); ok {
			p.Score++
			winnerName = p.Name
		}
	}

	answers := make([]AnswerEntry, 0, len(subs))
	for _, sub := range subs {
		name := sub.Identity
		if p, ok := r.participants.get(sub.Identity); ok {
			name = p.Name
		}
		_, valid := judge.ParseAnswer(sub.Answer)
		answers = append(answers, AnswerEntry{Name: name, Answer: sub.Answer, Valid: valid})
	}
	rd.submissions.Clear()

	r.toHost(network.MsgTypeRoundResults, ResultsEvent{
		RoomCode:      r.Code,
		QuestionIndex: rd.index,
		Prompt:        q.Prompt,
		CorrectAnswer: q.Answer,
		Winner:        winnerName,
		Trigger:       rd.trigger,
		Answers:       answers,
		Scoreboard:    r.participants.scoreboard(),
	})

	summary := RoundSummary{
		RoomCode:      r.Code,
		Scoring:       string(r.Scoring),
		QuestionIndex: rd.index,
		Trigger:       rd.trigger,
		Winner:        winnerName,
		Submissions:   len(subs),
	}
	logger.Log.Infow("Round resolved", "room", r.Code, "question", rd.index, "trigger", rd.trigger, "winner", winnerName)
	if hook := r.hooks.OnRoundResolved; hook != nil {
		r.after(func() { hook(summary) })
	}
}

type gameOverState struct {
	state.Base
	room *Room
}

func (s *gameOverState) OnEnter() {
	r := s.room
	rd := r.round

	board := r.participants.scoreboard()
	r.toRoom(network.MsgTypeGameOver, GameOverEvent{
		RoomCode:   r.Code,
		Questions:  rd.set.Len(),
		Scoreboard: board,
	})

	summary := GameSummary{
		RoomCode:   r.Code,
		ContentID:  rd.set.ID,
		Scoring:    string(r.Scoring),
		Questions:  rd.set.Len(),
		Scoreboard: board,
		StartedAt:  r.CreatedAt,
		EndedAt:    r.clock.Now(),
	}
	logger.Log.Infow("Game over", "room", r.Code, "questions", rd.set.Len())
	if hook := r.hooks.OnGameOver; hook != nil {
		r.after(func() { hook(summary) })
	}
}

// roundMachine wires the round states into a strict transition table.
type roundMachine struct {
	*state.BaseStateMachine
	idle     *idleState
	active   *activeState
	judged   *judgedState
	gameOver *gameOverState
}

func newRoundMachine(r *Room) *roundMachine {
	m := &roundMachine{
		idle:     &idleState{Base: state.Base{ID: string(ModeIdle)}},
		active:   &activeState{Base: state.Base{ID: string(ModeActive)}, room: r},
		judged:   &judgedState{Base: state.Base{ID: string(ModeJudged)}, room: r},
		gameOver: &gameOverState{Base: state.Base{ID: string(ModeGameOver)}, room: r},
	}
	m.BaseStateMachine = state.NewBaseStateMachine(m.idle)

	m.AddTransition(m.idle, m.active, nil)
	m.AddTransition(m.idle, m.gameOver, nil)
	m.AddTransition(m.active, m.judged, nil)
	m.AddTransition(m.judged, m.active, nil)
	m.AddTransition(m.judged, m.gameOver, nil)
	return m
}

func (m *roundMachine) mode() Mode {
	return Mode(m.CurrentID())
}
