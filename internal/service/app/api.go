package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"lockchat/internal/model"

	"github.com/gorilla/websocket"
)

// maxFrameSize matches the relay's inbound frame limit.
const maxFrameSize = 64 << 10

var errNotFound = errors.New("not found")

func (c *App) getParamsOfUser(name string) (model.Params, error) {
	u := url.URL{
		Scheme: "http",
		Host:   c.cfg.ServerAddr,
		Path:   fmt.Sprintf("/params/%s", url.PathEscape(name)),
	}

	resp, err := c.http.Get(u.String())
	if err != nil {
		return model.Params{}, err
	}

	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return model.Params{}, fmt.Errorf("user %s: %w", name, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return model.Params{}, fmt.Errorf("get params of %s: %s", name, resp.Status)
	}

	var p model.Params
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return model.Params{}, err
	}
	return p, nil
}

func (c *App) registerUser(user *model.User) error {
	u := url.URL{
		Scheme: "http",
		Host:   c.cfg.ServerAddr,
		Path:   "/users",
	}

	body, err := json.Marshal(user)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(u.String(), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}

	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("register %s: %s: %s", user.Name, resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}

func (c *App) initWebhook(name string) (*websocket.Conn, error) {
	params := url.Values{
		"userID": []string{name},
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     c.cfg.ServerAddr,
		Path:     "/init",
		RawQuery: params.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxFrameSize)

	return conn, nil
}
