package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// cookiePurpose names the cookie a sealed value belongs to. Every purpose
// gets its own key, and the purpose is bound as additional data, so a value
// sealed for one cookie never opens as another.
type cookiePurpose string

const sessionCookiePurpose cookiePurpose = authCookieName

const sealedCookieVersion byte = 1

var (
	errInvalidSealedCookie  = errors.New("invalid sealed cookie")
	errUnknownCookiePurpose = errors.New("unknown cookie purpose")
)

type cookieSealer struct {
	aeads map[cookiePurpose]cipher.AEAD
}

func newCookieSealer(secretKey []byte, purposes ...cookiePurpose) (*cookieSealer, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("cookie secret key is required")
	}
	if len(purposes) == 0 {
		return nil, errors.New("at least one cookie purpose is required")
	}

	sealer := &cookieSealer{aeads: make(map[cookiePurpose]cipher.AEAD, len(purposes))}
	for _, purpose := range purposes {
		key, err := deriveCookieKey(secretKey, purpose)
		if err != nil {
			return nil, err
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("init %s cipher: %w", purpose, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("init %s aead: %w", purpose, err)
		}
		sealer.aeads[purpose] = aead
	}
	return sealer, nil
}

func deriveCookieKey(secretKey []byte, purpose cookiePurpose) ([]byte, error) {
	if strings.TrimSpace(string(purpose)) == "" {
		return nil, errors.New("cookie purpose is required")
	}
	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, secretKey, nil, []byte("mealsnap cookie "+string(purpose)))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

// seal encrypts plaintext as base64url(version | nonce | ciphertext).
func (sealer *cookieSealer) seal(purpose cookiePurpose, plaintext []byte) (string, error) {
	aead, ok := sealer.aeads[purpose]
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnknownCookiePurpose, purpose)
	}

	payload := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	payload[0] = sealedCookieVersion
	if _, err := io.ReadFull(rand.Reader, payload[1:]); err != nil {
		return "", fmt.Errorf("generate cookie nonce: %w", err)
	}
	payload = aead.Seal(payload, payload[1:], plaintext, []byte(purpose))
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

func (sealer *cookieSealer) open(purpose cookiePurpose, value string) ([]byte, error) {
	aead, ok := sealer.aeads[purpose]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownCookiePurpose, purpose)
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return nil, errInvalidSealedCookie
	}
	headerSize := 1 + aead.NonceSize()
	if len(payload) <= headerSize || payload[0] != sealedCookieVersion {
		return nil, errInvalidSealedCookie
	}

	plaintext, err := aead.Open(nil, payload[1:headerSize], payload[headerSize:], []byte(purpose))
	if err != nil {
		return nil, errInvalidSealedCookie
	}
	return plaintext, nil
}
