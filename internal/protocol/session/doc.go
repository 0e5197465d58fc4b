// Package session holds an established chat session: the peer and the string
// key both sides derived from the handshake.
//
// Text is encrypted with a Vigenère cipher over encryption.AppRange in
// non-strict mode, so spaces, digits and punctuation travel in the clear.
//
// Concurrency: State is NOT safe for concurrent use. Callers must serialise
// access per conversation.
package session
