package model

type (
	// Params are the public Diffie–Hellman group parameters: a generator G
	// that must be a primitive root of the prime modulus N.
	Params struct {
		G int `json:"g"`
		N int `json:"n"`
	}
)
