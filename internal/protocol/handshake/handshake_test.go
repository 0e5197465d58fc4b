package handshake_test

import (
	"errors"
	"strings"
	"testing"

	"lockchat/internal/cryptographic/dh"
	"lockchat/internal/model"
	"lockchat/internal/protocol/handshake"
)

var defaultParams = model.Params{G: 5, N: 23}

func TestHandshake_EstablishesSharedSession(t *testing.T) {
	alice, err := handshake.NewInitiator("bob", defaultParams, 16)
	if err != nil {
		t.Fatalf("NewInitiator: %v", err)
	}
	hello, err := alice.Hello()
	if err != nil {
		t.Fatalf("Hello: %v", err)
	}
	if len(hello.Contribution) != 16 {
		t.Fatalf("contribution length %d, want 16", len(hello.Contribution))
	}

	reply, bobState, err := handshake.Respond("alice", defaultParams, hello)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	aliceState, err := alice.Finish(reply)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if aliceState.Key != bobState.Key {
		t.Fatalf("session keys differ: %q != %q", aliceState.Key, bobState.Key)
	}
	if aliceState.Peer != "bob" || bobState.Peer != "alice" {
		t.Fatalf("unexpected peers %q, %q", aliceState.Peer, bobState.Peer)
	}

	ct, err := aliceState.Seal("hi bob")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	pt, err := bobState.Open(ct)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if pt != "hi bob" {
		t.Fatalf("got %q, want %q", pt, "hi bob")
	}
}

func TestHandshake_HelloIsOneShot(t *testing.T) {
	alice, _ := handshake.NewInitiator("bob", defaultParams, 4)
	if _, err := alice.Hello(); err != nil {
		t.Fatalf("Hello: %v", err)
	}
	if _, err := alice.Hello(); !errors.Is(err, dh.ErrReuse) {
		t.Fatalf("second Hello: want ErrReuse, got %v", err)
	}
}

func TestHandshake_RejectsInvalidParams(t *testing.T) {
	if _, err := handshake.NewInitiator("bob", model.Params{G: 4, N: 7}, 8); !errors.Is(err, dh.ErrInvalidParameter) {
		t.Fatalf("want ErrInvalidParameter, got %v", err)
	}
}

func TestValidateParams_RejectsOversizedModulus(t *testing.T) {
	for _, p := range []model.Params{{G: 7, N: 55343}, {G: 1, N: 1 << 40}} {
		if err := handshake.ValidateParams(p); !errors.Is(err, dh.ErrInvalidParameter) {
			t.Fatalf("%+v: want ErrInvalidParameter, got %v", p, err)
		}
	}
}

func TestHandshake_RejectsLongContribution(t *testing.T) {
	hello := &model.Handshake{
		Params:       defaultParams,
		Contribution: strings.Repeat("A", handshake.MaxContributionLength+1),
	}
	if _, _, err := handshake.Respond("alice", defaultParams, hello); !errors.Is(err, handshake.ErrContributionTooLong) {
		t.Fatalf("Respond: want ErrContributionTooLong, got %v", err)
	}
	if _, err := handshake.NewInitiator("bob", defaultParams, handshake.MaxContributionLength+1); !errors.Is(err, handshake.ErrContributionTooLong) {
		t.Fatalf("NewInitiator: want ErrContributionTooLong, got %v", err)
	}
}

func TestHandshake_RejectsMismatchedParams(t *testing.T) {
	alice, _ := handshake.NewInitiator("bob", defaultParams, 8)
	hello, _ := alice.Hello()

	if _, _, err := handshake.Respond("alice", model.Params{G: 2, N: 11}, hello); !errors.Is(err, handshake.ErrParamsMismatch) {
		t.Fatalf("Respond: want ErrParamsMismatch, got %v", err)
	}

	reply := &model.Handshake{Params: model.Params{G: 2, N: 11}, Contribution: "ABCDEFGH"}
	if _, err := alice.Finish(reply); !errors.Is(err, handshake.ErrParamsMismatch) {
		t.Fatalf("Finish: want ErrParamsMismatch, got %v", err)
	}
}

func TestHandshake_LengthMismatch(t *testing.T) {
	alice, _ := handshake.NewInitiator("bob", defaultParams, 8)
	if _, err := alice.Hello(); err != nil {
		t.Fatalf("Hello: %v", err)
	}
	reply := &model.Handshake{Params: defaultParams, Contribution: "ABC"}
	if _, err := alice.Finish(reply); !errors.Is(err, dh.ErrLengthMismatch) {
		t.Fatalf("want ErrLengthMismatch, got %v", err)
	}
}

func TestHandshake_MissingHandshake(t *testing.T) {
	if _, _, err := handshake.Respond("alice", defaultParams, nil); !errors.Is(err, handshake.ErrMissingHandshake) {
		t.Fatalf("want ErrMissingHandshake, got %v", err)
	}
}
