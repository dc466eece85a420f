// Package auth provides password hashing and PASETO token handling.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength    = 32
	keyHexLength = 64

	keyFileName = "token.key"
)

// ResolveKey returns the token key. A configured hex key wins. Otherwise the
// key is loaded from, or generated into, <dataPath>/token.key.
func ResolveKey(keyHex, dataPath string) ([]byte, error) {
	if keyHex = strings.TrimSpace(keyHex); keyHex != "" {
		return decodeKey(keyHex)
	}
	return LoadOrGenerateKey(dataPath)
}

// LoadOrGenerateKey loads the hex-encoded key stored at <dataPath>/token.key,
// creating it with a fresh random key on first run.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- key path is derived from the configured data path
	if raw, err := os.ReadFile(keyPath); err == nil {
		return decodeKey(strings.TrimSpace(string(raw)))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read token key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save token key: %w", err)
	}

	return key, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("token key must be %d hex characters, got %d", keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("token key is not valid hex: %w", err)
	}
	return key, nil
}
