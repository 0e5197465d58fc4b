package model

type (
	// Handshake carries one side's public contribution to a key exchange.
	// Contribution is a string produced by dh.SequenceLocksmith and must be
	// delivered to the peer unmodified.
	Handshake struct {
		Params
		Contribution string `json:"contribution"`
	}
)
