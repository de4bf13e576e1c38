package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/wfunc/quizroom/broadcast"
	"github.com/wfunc/quizroom/config"
	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/monitor"
	"github.com/wfunc/quizroom/network"
	"github.com/wfunc/quizroom/notify"
	"github.com/wfunc/quizroom/persistence"
	"github.com/wfunc/quizroom/room"
	"github.com/wfunc/quizroom/rpc"
	"github.com/wfunc/quizroom/services"
	"github.com/wfunc/quizroom/session"
	"github.com/wfunc/quizroom/timer"
)

const heartbeatInterval = 30 * time.Second

// Deps are the collaborators built by main. Nil members get working defaults.
type Deps struct {
	Content   room.ContentSource
	History   *services.HistoryService
	Publisher notify.Publisher
	Monitor   *monitor.Monitor
	Clock     clockwork.Clock
}

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	gateway        *broadcast.Gateway
	history        *services.HistoryService
	publisher      notify.Publisher
	monitor        *monitor.Monitor
	rpcServer      *rpc.Server
	httpServer     *http.Server
	metricsServer  *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

func NewGameServer(cfg *config.Config, deps Deps) (*GameServer, error) {
	if deps.Monitor == nil {
		deps.Monitor = monitor.NewMonitor("quizroom")
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.Nop{}
	}
	if deps.History == nil {
		deps.History = services.NewHistoryService(persistence.NewMemory())
	}

	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		history:        deps.History,
		publisher:      deps.Publisher,
		monitor:        deps.Monitor,
		shutdownChan:   make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.gateway = broadcast.NewGateway(s.sessionManager, s.monitor)

	scoring, err := room.ParseScoring(cfg.Game.DefaultScoring, room.ScoringClosest)
	if err != nil {
		return nil, err
	}
	s.registry = room.NewRegistry(room.Options{
		Clock:          deps.Clock,
		Timers:         timer.NewTimerManager(deps.Clock),
		Content:        deps.Content,
		Sender:         s.gateway,
		Hooks:          s.roomHooks(),
		DefaultScoring: scoring,
		Limits: room.Limits{
			MaxNameLength:   cfg.Game.MaxNameLength,
			MaxAnswerLength: cfg.Game.MaxAnswerLength,
		},
		CodeAttempts:   cfg.Game.CodeAttempts,
		EmptyRoomGrace: cfg.Game.EmptyRoomGrace,
		SweepInterval:  cfg.Game.SweepInterval,
	})

	if cfg.Server.RPCAddress != "" {
		rpcServer, err := rpc.NewServer(cfg.Server.RPCAddress)
		if err != nil {
			return nil, err
		}
		s.rpcServer = rpcServer
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *GameServer) roomHooks() room.Hooks {
	return room.Hooks{
		OnRoundResolved: func(summary room.RoundSummary) {
			s.monitor.RoundResolved(summary.Trigger)
			s.publisher.RoundResolved(summary)
		},
		OnGameOver: func(summary room.GameSummary) {
			s.monitor.GameFinished()
			s.publisher.GameOver(summary)
			s.history.RecordGame(summary)
		},
		OnBuzz: func(string) {
			s.monitor.Buzz()
		},
		OnRoomClosed: func(closed room.ClosedRoom) {
			for _, id := range closed.Members {
				if sess, ok := s.sessionManager.Get(id); ok {
					sess.ClearRoomCode(closed.Code)
				}
			}
			s.monitor.SetActiveRooms(s.registry.Count())
		},
	}
}

func (s *GameServer) Registry() *room.Registry {
	return s.registry
}

// Start runs the RPC server, the sweeper and the HTTP listener. It returns
// once the HTTP listener stops.
func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}
	if addr := s.cfg.Server.MetricsAddress; addr != "" {
		s.metricsServer = s.monitor.StartServer(addr)
		logger.Log.Infof("Metrics listening on %s", addr)
	}
	s.registry.Start()

	logger.Log.Infof("Quiz server listening on %s", s.cfg.Server.HTTPAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, closes every room and releases
// the archive and publisher.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		if s.rpcServer != nil {
			s.rpcServer.SetServing(false)
		}

		err = s.httpServer.Shutdown(ctx)
		if s.metricsServer != nil {
			s.metricsServer.Shutdown(ctx)
		}

		s.registry.Shutdown()
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}

		if s.rpcServer != nil {
			s.rpcServer.Stop()
		}
		s.history.Close()
		s.publisher.Close()
	})
	return err
}

func (s *GameServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(network.NewWSConnection(conn))
}

func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession("", conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlineConnections()
	conn.SetHeartbeat(heartbeatInterval)

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.disconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlineConnections()
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := conn.ReadPacket()
			if errors.Is(err, network.ErrMalformedPacket) {
				s.sendError(sess, "malformed-packet", fmt.Errorf("%w: %v", room.ErrValidation, err))
				continue
			}
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// disconnect detaches the session from its room, if any.
func (s *GameServer) disconnect(sess *session.Session) {
	code := sess.RoomCode()
	if code == "" {
		return
	}
	s.registry.Disconnect(code, sess.GetID())
	sess.SetRoomCode("")
}
