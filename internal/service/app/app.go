package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"lockchat/internal/config"
	"lockchat/internal/model"
	"lockchat/internal/service/redis"
	"lockchat/internal/utils/log"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

type (
	App struct {
		app     *tview.Application
		chatbox *tview.TextView
		input   *tview.InputField

		cfg          config.Config
		http         *http.Client
		redisService *redis.RedisService

		user   *model.User
		toName string

		mu   sync.Mutex
		conv *conversation

		connMu sync.Mutex
		conn   *websocket.Conn

		stopOnce sync.Once
	}
)

func NewApp(cfg config.Config, redis *redis.RedisService) *App {
	return &App{
		app:          tview.NewApplication(),
		cfg:          cfg,
		http:         &http.Client{Timeout: 10 * time.Second},
		redisService: redis,
	}
}

// Run registers the user if needed, restores any saved session with toName
// and blocks in the terminal UI until it exits.
func (c *App) Run(ctx context.Context, name string, toName string) error {
	user, err := c.getUserAndRegisterIfNotExist(name)
	if err != nil {
		return fmt.Errorf("get user info failed: %w", err)
	}
	c.user = user
	c.toName = toName
	c.conv = newConversation(*user, toName, c.cfg.SecretLength, func() (model.Params, error) {
		return c.getParamsOfUser(toName)
	})

	state, err := c.GetState(ctx, user.Name, toName)
	if err != nil {
		log.Error("load saved session failed", zap.Error(err))
	}
	c.conv.state = state

	c.conn, err = c.initWebhook(user.Name)
	if err != nil {
		return fmt.Errorf("init webhook to server failed: %w", err)
	}

	go c.listenOnWebhook()
	return c.renderUI()
}

// Stop closes the UI and the relay connection and saves the session. It is
// safe to call more than once.
func (c *App) Stop() {
	c.stopOnce.Do(func() {
		c.app.Stop()
		if c.conn != nil {
			c.conn.Close()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conv == nil {
			return
		}
		if err := c.SaveState(context.TODO(), c.user.Name, c.toName, c.conv.state); err != nil {
			log.Error("save session failed", zap.Error(err))
		}
	})
}

// blocking function
func (c *App) renderUI() error {
	c.chatbox = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	c.chatbox.SetBorder(true).SetTitle(fmt.Sprintf(" Chat with %s ", c.toName))

	c.input = tview.NewInputField().
		SetLabel("Message: ").
		SetFieldWidth(0)
	c.input.SetBorder(true).SetTitle(" New Message ")

	c.input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := c.input.GetText()
			if text == "" {
				return
			}
			c.input.SetText("")

			go func(msg string) {
				if err := c.SendMessage(msg); err != nil {
					log.Error("Send message failed", zap.Error(err))
					c.printf("[red]send failed:[-] %s\n", tview.Escape(err.Error()))
				}
			}(text)
		}
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(c.chatbox, 0, 1, false).
		AddItem(c.input, 3, 0, true)

	c.mu.Lock()
	if c.conv.state != nil {
		c.showFingerprint()
	}
	c.mu.Unlock()

	return c.app.SetRoot(layout, true).SetFocus(c.input).Run()
}

func (c *App) listenOnWebhook() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("worker web socket closed", zap.Error(err))
			c.conn.Close()
			c.printf("[red]disconnected from relay[-]\n")
			break
		}

		var message model.Message
		err = json.Unmarshal(data, &message)
		if err != nil {
			log.Error("Unmarshal message failed", zap.Error(err))
			continue
		}

		if err := c.ReceiveMessage(&message); err != nil {
			log.Error("receive message failed", zap.String("from", message.From),
				zap.String("kind", string(message.Kind)), zap.Error(err))
			c.printf("[red]dropped message from %s:[-] %s\n", tview.Escape(message.From), tview.Escape(err.Error()))
		}
	}
}

func (c *App) SendMessage(msg string) error {
	c.mu.Lock()
	out, events, err := c.conv.send(msg)
	c.mu.Unlock()

	c.render(events)
	if err != nil {
		return err
	}
	return c.write(out)
}

func (c *App) ReceiveMessage(message *model.Message) error {
	c.mu.Lock()
	out, events, err := c.conv.receive(message)
	c.mu.Unlock()

	c.render(events)
	if err != nil {
		return err
	}
	return c.write(out)
}

func (c *App) write(messages []*model.Message) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	for _, m := range messages {
		if err := c.conn.WriteJSON(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *App) render(events []event) {
	for _, e := range events {
		switch e.kind {
		case eventSent:
			c.printf("[yellow]You:[-] %s\n", tview.Escape(e.text))
		case eventQueued:
			c.printf("[gray]You (waiting for key exchange):[-] %s\n", tview.Escape(e.text))
		case eventReceived:
			c.printf("[green]%s:[-] %s\n", tview.Escape(c.toName), tview.Escape(e.text))
		case eventEstablished:
			log.Info("session established", zap.String("peer", c.toName), zap.String("fingerprint", e.text))
			c.mu.Lock()
			if err := c.SaveState(context.TODO(), c.user.Name, c.toName, c.conv.state); err != nil {
				log.Error("save session failed", zap.Error(err))
			}
			c.mu.Unlock()
			c.printf("[blue]session established, fingerprint %s[-]\n", e.text)
		}
	}
}

// showFingerprint must be called with c.mu held.
func (c *App) showFingerprint() {
	fingerprint, err := c.conv.state.Fingerprint()
	if err != nil {
		log.Error("fingerprint failed", zap.Error(err))
		return
	}
	fmt.Fprintf(c.chatbox, "[blue]resumed session, fingerprint %s[-]\n", fingerprint)
}

func (c *App) printf(format string, args ...any) {
	c.app.QueueUpdateDraw(func() {
		fmt.Fprintf(c.chatbox, format, args...)
		c.chatbox.ScrollToEnd()
	})
}
