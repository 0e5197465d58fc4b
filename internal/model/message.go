package model

type MessageKind string

const (
	// KindHello opens a session and carries the initiator's contribution.
	KindHello MessageKind = "hello"
	// KindHelloAck answers a hello with the responder's contribution.
	KindHelloAck MessageKind = "hello_ack"
	// KindChat carries Vigenère ciphertext under an established session.
	KindChat MessageKind = "chat"
)

type (
	Message struct {
		From       string      `json:"from"`
		To         string      `json:"to"`
		Kind       MessageKind `json:"kind"`
		Ciphertext string      `json:"ciphertext,omitempty"`
		Handshake  *Handshake  `json:"handshake,omitempty"`
	}
)
