package handshake

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"lockchat/internal/cryptographic/dh"
	"lockchat/internal/model"
	"lockchat/internal/protocol/session"
)

// MaxContributionLength bounds the runes in a contribution, and so in every
// generated secret and session key.
const MaxContributionLength = 1024

var (
	ErrParamsMismatch      = errors.New("handshake parameters do not match")
	ErrMissingHandshake    = errors.New("message carries no handshake")
	ErrContributionTooLong = fmt.Errorf("contribution longer than %d runes", MaxContributionLength)
)

// ValidateParams fails with dh.ErrInvalidParameter unless N is at most
// dh.MaxModulus and G is a primitive root of N.
func ValidateParams(p model.Params) error {
	return dh.ValidateParams(p.G, p.N)
}

type Initiator struct {
	peer   string
	params model.Params
	party  *dh.SequenceLocksmith
}

func NewInitiator(peer string, params model.Params, secretLength int) (*Initiator, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}
	if secretLength > MaxContributionLength {
		return nil, fmt.Errorf("%w: secret length %d", ErrContributionTooLong, secretLength)
	}
	secret, err := dh.RandomSecret(secretLength)
	if err != nil {
		return nil, err
	}
	party, err := dh.NewSequenceLocksmith(params.G, params.N, secret)
	if err != nil {
		return nil, err
	}
	return &Initiator{peer: peer, params: params, party: party}, nil
}

func (i *Initiator) Peer() string { return i.peer }

// Hello returns the opening handshake. It may only be produced once.
func (i *Initiator) Hello() (*model.Handshake, error) {
	contribution, err := i.party.MakeIntermediateValue()
	if err != nil {
		return nil, fmt.Errorf("hello: %w", err)
	}
	return &model.Handshake{Params: i.params, Contribution: contribution}, nil
}

// Finish derives the session from the responder's reply.
func (i *Initiator) Finish(reply *model.Handshake) (*session.State, error) {
	if reply == nil {
		return nil, ErrMissingHandshake
	}
	if reply.Params != i.params {
		return nil, fmt.Errorf("%w: sent %+v, got %+v", ErrParamsMismatch, i.params, reply.Params)
	}
	key, err := i.party.MakeKey(reply.Contribution)
	if err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	return session.New(i.peer, key)
}

// Respond answers a hello from peer using our own published parameters. It
// returns the reply to send back and the established session.
func Respond(peer string, own model.Params, hello *model.Handshake) (*model.Handshake, *session.State, error) {
	if hello == nil {
		return nil, nil, ErrMissingHandshake
	}
	if hello.Params != own {
		return nil, nil, fmt.Errorf("%w: ours %+v, theirs %+v", ErrParamsMismatch, own, hello.Params)
	}

	length := utf8.RuneCountInString(hello.Contribution)
	if length > MaxContributionLength {
		return nil, nil, fmt.Errorf("%w: got %d", ErrContributionTooLong, length)
	}

	secret, err := dh.RandomSecret(length)
	if err != nil {
		return nil, nil, err
	}
	party, err := dh.NewSequenceLocksmith(own.G, own.N, secret)
	if err != nil {
		return nil, nil, err
	}

	contribution, err := party.MakeIntermediateValue()
	if err != nil {
		return nil, nil, err
	}
	key, err := party.MakeKey(hello.Contribution)
	if err != nil {
		return nil, nil, fmt.Errorf("respond: %w", err)
	}
	state, err := session.New(peer, key)
	if err != nil {
		return nil, nil, err
	}
	return &model.Handshake{Params: own, Contribution: contribution}, state, nil
}
