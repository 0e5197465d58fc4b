package app

import (
	"errors"
	"fmt"

	"lockchat/internal/model"
	"lockchat/internal/protocol/handshake"
	"lockchat/internal/protocol/session"
)

var (
	ErrNoSession       = errors.New("no session established")
	ErrUnexpectedPeer  = errors.New("message from unexpected sender")
	ErrUnexpectedReply = errors.New("hello_ack without a pending hello")
	ErrUnknownKind     = errors.New("unknown message kind")
)

type eventKind int

const (
	eventSent eventKind = iota
	eventQueued
	eventReceived
	eventEstablished
)

type event struct {
	kind eventKind
	text string
}

// conversation is the session state machine for one peer. It turns user
// input and relay frames into frames to send and events to display, and
// never touches the network or the UI itself.
type conversation struct {
	self         model.User
	peer         string
	secretLength int
	peerParams   func() (model.Params, error)

	state     *session.State
	initiator *handshake.Initiator
	pending   []string
}

func newConversation(self model.User, peer string, secretLength int, peerParams func() (model.Params, error)) *conversation {
	return &conversation{
		self:         self,
		peer:         peer,
		secretLength: secretLength,
		peerParams:   peerParams,
	}
}

// send encrypts text under the session, or queues it and opens a handshake
// when there is none yet.
func (c *conversation) send(text string) ([]*model.Message, []event, error) {
	if c.state != nil {
		msg, err := c.seal(text)
		if err != nil {
			return nil, nil, err
		}
		return []*model.Message{msg}, []event{{kind: eventSent, text: text}}, nil
	}

	c.pending = append(c.pending, text)
	events := []event{{kind: eventQueued, text: text}}
	if c.initiator != nil {
		return nil, events, nil
	}

	params, err := c.peerParams()
	if err != nil {
		return nil, events, fmt.Errorf("fetch params of %s: %w", c.peer, err)
	}
	initiator, err := handshake.NewInitiator(c.peer, params, c.secretLength)
	if err != nil {
		return nil, events, err
	}
	hello, err := initiator.Hello()
	if err != nil {
		return nil, events, err
	}
	c.initiator = initiator

	return []*model.Message{c.frame(model.KindHello, "", hello)}, events, nil
}

func (c *conversation) receive(m *model.Message) ([]*model.Message, []event, error) {
	if m.From != c.peer {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnexpectedPeer, m.From)
	}

	switch m.Kind {
	case model.KindHello:
		// Both sides sent a hello at once: the lower name keeps its own and
		// waits for the peer's answer.
		if c.initiator != nil && c.self.Name < m.From {
			return nil, nil, nil
		}
		reply, state, err := handshake.Respond(m.From, c.self.Params(), m.Handshake)
		if err != nil {
			return nil, nil, err
		}
		c.initiator = nil
		out, events, err := c.establish(state)
		out = append([]*model.Message{c.frame(model.KindHelloAck, "", reply)}, out...)
		return out, events, err

	case model.KindHelloAck:
		if c.initiator == nil {
			return nil, nil, ErrUnexpectedReply
		}
		initiator := c.initiator
		c.initiator = nil
		state, err := initiator.Finish(m.Handshake)
		if err != nil {
			return nil, nil, err
		}
		return c.establish(state)

	case model.KindChat:
		if c.state == nil {
			return nil, nil, ErrNoSession
		}
		plain, err := c.state.Open(m.Ciphertext)
		if err != nil {
			return nil, nil, err
		}
		return nil, []event{{kind: eventReceived, text: plain}}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}

// establish installs state and flushes everything typed while waiting.
func (c *conversation) establish(state *session.State) ([]*model.Message, []event, error) {
	c.state = state

	fingerprint, err := state.Fingerprint()
	if err != nil {
		return nil, nil, err
	}
	events := []event{{kind: eventEstablished, text: fingerprint}}

	var out []*model.Message
	for len(c.pending) > 0 {
		text := c.pending[0]
		msg, err := c.seal(text)
		if err != nil {
			return out, events, err
		}
		c.pending = c.pending[1:]
		out = append(out, msg)
		events = append(events, event{kind: eventSent, text: text})
	}
	return out, events, nil
}

func (c *conversation) seal(text string) (*model.Message, error) {
	ct, err := c.state.Seal(text)
	if err != nil {
		return nil, err
	}
	return c.frame(model.KindChat, ct, nil), nil
}

func (c *conversation) frame(kind model.MessageKind, ciphertext string, hs *model.Handshake) *model.Message {
	return &model.Message{
		From:       c.self.Name,
		To:         c.peer,
		Kind:       kind,
		Ciphertext: ciphertext,
		Handshake:  hs,
	}
}
