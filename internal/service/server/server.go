package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"lockchat/internal/model"
	"lockchat/internal/protocol/handshake"
	userRepo "lockchat/internal/repository/user"
	"lockchat/internal/utils/log"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxFrameSize bounds one websocket frame. A hello with the longest allowed
// contribution fits comfortably.
const maxFrameSize = 64 << 10

type (
	UserRepository interface {
		GetByName(ctx context.Context, name string) (*model.User, error)
		Create(ctx context.Context, user *model.User) (primitive.ObjectID, error)
	}

	MessageQueue interface {
		RPush(ctx context.Context, key string, value ...any) error
		Drain(ctx context.Context, key string) ([]string, error)
	}

	HttpServer struct {
		mu     sync.RWMutex
		mapper map[string]*peerConn

		userRepo UserRepository
		queue    MessageQueue

		srv *http.Server
	}

	// peerConn serialises writes; gorilla connections allow one writer at a time.
	peerConn struct {
		mu   sync.Mutex
		conn *websocket.Conn
	}
)

func NewHttpServer(addr string, userRepo UserRepository, queue MessageQueue) *HttpServer {
	s := &HttpServer{
		mapper:   make(map[string]*peerConn),
		userRepo: userRepo,
		queue:    queue,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HttpServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/init", s.HandleInitWS()).Methods(http.MethodGet)
	r.HandleFunc("/users", s.RegisterUser()).Methods(http.MethodPost)
	r.HandleFunc("/params/{name}", s.GetParamsOfUser()).Methods(http.MethodGet)
	return r
}

// Run serves in the background until Shutdown.
func (s *HttpServer) Run() {
	go func() {
		log.Info("relay listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("relay stopped", zap.Error(err))
		}
	}()
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for userID, pc := range s.mapper {
		pc.conn.Close()
		delete(s.mapper, userID)
	}
	s.mu.Unlock()
	return s.srv.Shutdown(ctx)
}

func (s *HttpServer) Online(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.mapper[userID]
	return ok
}

func (s *HttpServer) HandleInitWS() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userID")
		if userID == "" {
			http.Error(w, "userID cannot be empty", http.StatusBadRequest)
			return
		}

		if s.Online(userID) {
			http.Error(w, "duplicated userID", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
			return
		}

		conn.SetReadLimit(maxFrameSize)

		// Live frames routed to this conn wait on pc.mu until the queued
		// backlog is written, so they cannot overtake it.
		pc := &peerConn{conn: conn}
		pc.mu.Lock()
		s.mu.Lock()
		if _, ok := s.mapper[userID]; ok {
			s.mu.Unlock()
			pc.mu.Unlock()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "duplicated userID"),
				time.Now().Add(time.Second))
			conn.Close()
			return
		}
		s.mapper[userID] = pc
		s.mu.Unlock()

		log.Info("user connected", zap.String("user", userID))
		go s.processWSMessage(userID, pc)
		err = s.forwardLocked(context.Background(), userID, pc)
		pc.mu.Unlock()
		if err != nil {
			log.Error("forward msg failed", zap.Error(err))
		}
	}
}

func (s *HttpServer) processWSMessage(userID string, pc *peerConn) {
	defer func() {
		s.mu.Lock()
		if s.mapper[userID] == pc {
			delete(s.mapper, userID)
		}
		s.mu.Unlock()
		pc.conn.Close()
	}()

	for {
		_, data, err := pc.conn.ReadMessage()
		if err != nil {
			log.Debug("worker web socket closed", zap.String("user", userID), zap.Error(err))
			return
		}

		var message model.Message
		if err := json.Unmarshal(data, &message); err != nil {
			log.Error("Unmarshal message failed", zap.String("user", userID), zap.Error(err))
			continue
		}
		if message.To == "" {
			log.Error("message without recipient", zap.String("user", userID))
			continue
		}
		// senders cannot speak for someone else
		message.From = userID

		if err := s.route(context.Background(), &message); err != nil {
			log.Error("route message failed", zap.String("from", userID), zap.String("to", message.To), zap.Error(err))
		}
	}
}

// route delivers to an online recipient or queues for later.
func (s *HttpServer) route(ctx context.Context, message *model.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	// Queueing under the read lock keeps the frame ahead of a concurrent
	// connect, which drains the queue only after it publishes the conn.
	s.mu.RLock()
	pc, ok := s.mapper[message.To]
	if !ok {
		defer s.mu.RUnlock()
		return s.PutMessagesToCache(ctx, message.To, [][]byte{data})
	}
	s.mu.RUnlock()

	if err := pc.write(data); err != nil {
		log.Debug("direct delivery failed, queueing", zap.String("to", message.To), zap.Error(err))
		return s.PutMessagesToCache(ctx, message.To, [][]byte{data})
	}
	return nil
}

func (s *HttpServer) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.User
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "name cannot be empty", http.StatusBadRequest)
			return
		}
		if err := handshake.ValidateParams(req.Params()); err != nil {
			log.Info("rejected registration", zap.String("name", req.Name), zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		user := &model.User{Name: req.Name, G: req.G, N: req.N}
		if _, err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, userRepo.ErrUserExists) {
				http.Error(w, "user already exists", http.StatusConflict)
				return
			}
			log.Error("Register user failed", zap.Error(err))
			http.Error(w, "register user failed", http.StatusInternalServerError)
			return
		}

		log.Info("user registered", zap.String("name", user.Name), zap.Int("g", user.G), zap.Int("n", user.N))
		writeJSON(w, http.StatusCreated, user)
	}
}

func (s *HttpServer) GetParamsOfUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		vars := mux.Vars(r)
		name := vars["name"]
		log.Debug("GetParamsOfUser", zap.String("name", name))

		user, err := s.userRepo.GetByName(ctx, name)
		if err != nil {
			log.Error("Get params failed", zap.Error(err))
			http.Error(w, "get params failed", http.StatusInternalServerError)
			return
		}

		if user == nil {
			http.Error(w, "user does not exist", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, user.Params())
	}
}

// ForwardUnsentMessages writes the queued backlog of an online user.
func (s *HttpServer) ForwardUnsentMessages(ctx context.Context, userID string) error {
	s.mu.RLock()
	pc, ok := s.mapper[userID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	return s.forwardLocked(ctx, userID, pc)
}

// forwardLocked drains the queue into pc. The caller holds pc.mu.
func (s *HttpServer) forwardLocked(ctx context.Context, userID string, pc *peerConn) error {
	messages, err := s.GetMessagesFromCache(ctx, userID)
	if err != nil {
		return fmt.Errorf("ForwardUnsentMessages: %w", err)
	}

	for i, data := range messages {
		if err := pc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return s.PutMessagesToCache(ctx, userID, messages[i:])
		}
	}
	return nil
}

func (pc *peerConn) write(data []byte) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.conn.WriteMessage(websocket.TextMessage, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal response failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
