package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lockchat/internal/model"
	userRepo "lockchat/internal/repository/user"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func (m *memoryUsers) GetByName(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[name], nil
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Name]; ok {
		return primitive.NilObjectID, userRepo.ErrUserExists
	}
	user.ID = primitive.NewObjectID()
	m.users[user.Name] = user
	return user.ID, nil
}

type memoryQueue struct {
	mu     sync.Mutex
	queues map[string][]string
}

func (m *memoryQueue) RPush(_ context.Context, key string, value ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range value {
		m.queues[key] = append(m.queues[key], string(v.([]byte)))
	}
	return nil
}

func (m *memoryQueue) Drain(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vals := m.queues[key]
	delete(m.queues, key)
	return vals, nil
}

func (m *memoryQueue) len(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[key])
}

func newTestServer(t *testing.T) (*HttpServer, *memoryQueue, *httptest.Server) {
	t.Helper()
	queue := &memoryQueue{queues: make(map[string][]string)}
	users := &memoryUsers{users: make(map[string]*model.User)}
	s := NewHttpServer("", users, queue)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, queue, ts
}

func dial(t *testing.T, s *HttpServer, ts *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/init?userID=" + user
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", user, err)
	}
	t.Cleanup(func() { conn.Close() })
	waitFor(t, func() bool { return s.Online(user) })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) model.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m model.Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return m
}

func postUser(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/users", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /users: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterAndGetParams(t *testing.T) {
	_, _, ts := newTestServer(t)

	if resp := postUser(t, ts, `{"name":"alice","g":5,"n":23}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: got status %d", resp.StatusCode)
	}
	if resp := postUser(t, ts, `{"name":"alice","g":5,"n":23}`); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: got status %d", resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/params/alice")
	if err != nil {
		t.Fatalf("GET /params: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get params: got status %d", resp.StatusCode)
	}
	var p model.Params
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if p != (model.Params{G: 5, N: 23}) {
		t.Fatalf("got params %+v", p)
	}

	missing, err := http.Get(ts.URL + "/params/nobody")
	if err != nil {
		t.Fatalf("GET /params: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user: got status %d", missing.StatusCode)
	}
}

func TestRegister_RejectsNonPrimitiveRoot(t *testing.T) {
	_, _, ts := newTestServer(t)
	if resp := postUser(t, ts, `{"name":"mallory","g":4,"n":7}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", resp.StatusCode)
	}
}

func TestRegister_RejectsOversizedModulus(t *testing.T) {
	_, _, ts := newTestServer(t)

	done := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Post(ts.URL+"/users", "application/json",
			bytes.NewBufferString(`{"name":"mallory","g":1,"n":1099511627776}`))
		if err != nil {
			done <- nil
			return
		}
		resp.Body.Close()
		done <- resp
	}()

	select {
	case resp := <-done:
		if resp == nil || resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("want 400, got %v", resp)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("registration with n=2^40 did not return")
	}
}

func TestRelay_RejectsOversizedFrame(t *testing.T) {
	s, _, ts := newTestServer(t)
	alice := dial(t, s, ts, "alice")

	big := &model.Message{
		To:        "bob",
		Kind:      model.KindHello,
		Handshake: &model.Handshake{Params: model.Params{G: 5, N: 23}, Contribution: strings.Repeat("A", maxFrameSize)},
	}
	if err := alice.WriteJSON(big); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	waitFor(t, func() bool { return !s.Online("alice") })
}

func TestRelay_BacklogBeforeLiveFrames(t *testing.T) {
	s, queue, ts := newTestServer(t)
	alice := dial(t, s, ts, "alice")

	for i := 0; i < 50; i++ {
		m := &model.Message{To: "bob", Kind: model.KindChat, Ciphertext: fmt.Sprintf("queued-%d", i)}
		if err := alice.WriteJSON(m); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
	}
	waitFor(t, func() bool { return queue.len(queueKey("bob")) == 50 })

	// Keep sending while bob connects. Everything queued must arrive first
	// and every frame must arrive in send order.
	stop := make(chan struct{})
	sent := make(chan int, 1)
	go func() {
		i := 0
		defer func() { sent <- i }()
		for {
			select {
			case <-stop:
				return
			default:
			}
			m := &model.Message{To: "bob", Kind: model.KindChat, Ciphertext: fmt.Sprintf("live-%d", i)}
			if err := alice.WriteJSON(m); err != nil {
				return
			}
			i++
			time.Sleep(time.Millisecond)
		}
	}()

	bob := dial(t, s, ts, "bob")
	time.Sleep(50 * time.Millisecond)
	close(stop)
	live := <-sent

	var got []string
	for len(got) < 50+live {
		got = append(got, readMessage(t, bob).Ciphertext)
	}
	for i := 0; i < 50; i++ {
		if want := fmt.Sprintf("queued-%d", i); got[i] != want {
			t.Fatalf("frame %d: got %q, want %q", i, got[i], want)
		}
	}
	for i := 0; i < live; i++ {
		if want := fmt.Sprintf("live-%d", i); got[50+i] != want {
			t.Fatalf("frame %d: got %q, want %q", 50+i, got[50+i], want)
		}
	}
}

func TestRelay_DirectDelivery(t *testing.T) {
	s, _, ts := newTestServer(t)
	alice := dial(t, s, ts, "alice")
	bob := dial(t, s, ts, "bob")

	// From is rewritten to the authenticated connection.
	err := alice.WriteJSON(&model.Message{From: "mallory", To: "bob", Kind: model.KindChat, Ciphertext: "Uryyb"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got := readMessage(t, bob)
	if got.From != "alice" || got.Ciphertext != "Uryyb" || got.Kind != model.KindChat {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestRelay_QueuesForOfflineRecipient(t *testing.T) {
	s, queue, ts := newTestServer(t)
	alice := dial(t, s, ts, "alice")

	hello := &model.Message{
		To:        "carol",
		Kind:      model.KindHello,
		Handshake: &model.Handshake{Params: model.Params{G: 5, N: 23}, Contribution: "UNE"},
	}
	if err := alice.WriteJSON(hello); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	waitFor(t, func() bool { return queue.len(queueKey("carol")) == 1 })

	carol := dial(t, s, ts, "carol")
	got := readMessage(t, carol)
	if got.From != "alice" || got.Kind != model.KindHello || got.Handshake == nil || got.Handshake.Contribution != "UNE" {
		t.Fatalf("unexpected message %+v", got)
	}
	if n := queue.len(queueKey("carol")); n != 0 {
		t.Fatalf("queue not drained, %d left", n)
	}
}

func TestInit_RejectsDuplicateUser(t *testing.T) {
	s, _, ts := newTestServer(t)
	dial(t, s, ts, "alice")

	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/init?userID=alice"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected second connection to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", resp)
	}
}
