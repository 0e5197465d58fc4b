package session

import (
	"fmt"

	"lockchat/internal/cryptographic/encryption"
	"lockchat/internal/cryptographic/kdf"
)

type State struct {
	Peer string `json:"peer"`
	Key  string `json:"key"`

	cipher *encryption.Vigenere
}

func New(peer, key string) (*State, error) {
	s := &State{Peer: peer, Key: key}
	if _, err := s.vigenere(); err != nil {
		return nil, err
	}
	return s, nil
}

// Seal encrypts plain for the peer.
func (s *State) Seal(plain string) (string, error) {
	v, err := s.vigenere()
	if err != nil {
		return "", err
	}
	return v.Encrypt(plain, false)
}

// Open decrypts ciphertext received from the peer.
func (s *State) Open(ciphertext string) (string, error) {
	v, err := s.vigenere()
	if err != nil {
		return "", err
	}
	return v.Decrypt(ciphertext)
}

func (s *State) Fingerprint() (string, error) {
	return kdf.Fingerprint(s.Key)
}

// vigenere builds the cipher on first use; a State decoded from JSON only
// carries the key.
func (s *State) vigenere() (*encryption.Vigenere, error) {
	if s.cipher != nil {
		return s.cipher, nil
	}
	v, err := encryption.NewVigenere(encryption.AppRange, s.Key, false)
	if err != nil {
		return nil, fmt.Errorf("session with %s: %w", s.Peer, err)
	}
	s.cipher = v
	return v, nil
}
