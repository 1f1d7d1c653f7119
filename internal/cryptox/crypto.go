// Package cryptox seals document values before they leave the client, so the
// key-value server only ever stores ciphertext.
//
// A sealed value is the string "e2e1:" followed by the unpadded base64url
// encoding of salt(16) | nonce(12) | AES-256-GCM ciphertext. The key is
// derived from a passphrase with Argon2id and the salt carried in the value,
// which lets any client holding the passphrase open values sealed by another.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// SealedPrefix marks a sealed value.
const SealedPrefix = "e2e1:"

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

// ErrDecrypt is returned when a sealed value cannot be opened, usually
// because of a different passphrase.
var ErrDecrypt = errors.New("failed to decrypt value")

var encoding = base64.RawURLEncoding

// randRead is swapped in tests.
var randRead = rand.Read

// DeriveKey stretches passphrase into an AES-256 key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// IsSealed reports whether v carries the sealed prefix.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, SealedPrefix)
}

// Sealer encrypts and decrypts values with one passphrase. Derived keys are
// cached per salt. Safe for concurrent use.
type Sealer struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	keys map[string][]byte
}

func NewSealer(passphrase string) *Sealer {
	return &Sealer{
		passphrase: []byte(passphrase),
		keys:       make(map[string][]byte),
	}
}

func (s *Sealer) key(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k, ok := s.keys[string(salt)]; ok {
		return k
	}
	k := DeriveKey(s.passphrase, salt)
	s.keys[string(salt)] = k
	return k
}

func (s *Sealer) ownSalt() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := randRead(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		s.salt = salt
	}
	return s.salt, nil
}

// Seal encrypts plaintext into a sealed value.
func (s *Sealer) Seal(plaintext string) (string, error) {
	salt, err := s.ownSalt()
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(s.key(salt))
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := randRead(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return SealedPrefix + encoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Values without the sealed prefix are returned
// unchanged so plaintext data written before sealing was enabled stays
// readable.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	raw, err := encoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil || len(raw) < saltSize+nonceSize {
		return "", ErrDecrypt
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]

	gcm, err := newGCM(s.key(salt))
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, raw[saltSize+nonceSize:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return gcm, nil
}
