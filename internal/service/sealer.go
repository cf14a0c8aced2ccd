package service

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:v1:"

var sealSalt = []byte("ai-recipe-generator/credential")

var ErrSealed = errors.New("credential is sealed and no seal key is configured")

// Sealer encrypts persisted credentials with a key derived from a passphrase
type Sealer struct {
	key [32]byte
}

// NewSealer derives the sealing key. It returns nil for an empty passphrase,
// in which case credentials are persisted as plain text.
func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return nil
	}
	s := &Sealer{}
	copy(s.key[:], argon2.IDKey([]byte(passphrase), sealSalt, 1, 64*1024, 4, 32))
	return s
}

// Seal encrypts plain and returns the encoded envelope
func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	out := make([]byte, 0, len(sealedPrefix)+base64.StdEncoding.EncodedLen(len(box)))
	out = append(out, sealedPrefix...)
	return append(out, base64.StdEncoding.EncodeToString(box)...), nil
}

// Open decrypts an envelope produced by Seal
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if !IsSealed(data) {
		return nil, errors.New("credential is not sealed")
	}
	box, err := base64.StdEncoding.DecodeString(string(data[len(sealedPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed credential: %w", err)
	}
	if len(box) < 24+secretbox.Overhead {
		return nil, errors.New("sealed credential is truncated")
	}

	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("failed to open sealed credential: wrong key or corrupt data")
	}
	return plain, nil
}

// IsSealed reports whether data is a sealed envelope
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, []byte(sealedPrefix))
}
