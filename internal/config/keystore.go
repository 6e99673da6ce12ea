// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// KEYSTORE
// =============================================================================

const (
	// encPrefix marks an encrypted value in the config file.
	encPrefix = "ENC:"

	keystoreFile = "master.key"

	keySize    = 32
	saltSize   = 16
	iterations = 100_000
)

// ErrNotEncrypted is returned when decrypting a value without the ENC: prefix.
var ErrNotEncrypted = errors.New("keystore: value is not encrypted")

// Keystore encrypts secrets in the config file with a key derived from a
// random master key stored next to the config with owner-only permissions.
type Keystore struct {
	masterKey []byte
}

// OpenKeystore loads the master key, creating it on first use.
func OpenKeystore() (*Keystore, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return OpenKeystoreAt(filepath.Join(dir, keystoreFile))
}

// OpenKeystoreAt loads or creates the master key at an explicit path.
func OpenKeystoreAt(path string) (*Keystore, error) {
	key, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		key = make([]byte, keySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("keystore: generate master key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("keystore: create dir: %w", err)
		}
		if err := os.WriteFile(path, key, 0o600); err != nil {
			return nil, fmt.Errorf("keystore: write master key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("keystore: read master key: %w", err)
	}

	if len(key) != keySize {
		return nil, fmt.Errorf("keystore: master key has %d bytes, want %d", len(key), keySize)
	}
	return &Keystore{masterKey: key}, nil
}

// IsEncrypted reports whether a config value carries the encrypted prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// EncryptString encrypts a secret into the ENC:<base64> form stored in the
// config file. A fresh salt and nonce make repeated calls non-deterministic.
func (k *Keystore) EncryptString(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("keystore: generate salt: %w", err)
	}

	gcm, err := k.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("keystore: generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	// Layout: salt || nonce || ciphertext.
	blob := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return encPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString reverses EncryptString.
func (k *Keystore) DecryptString(value string) (string, error) {
	if !IsEncrypted(value) {
		return "", ErrNotEncrypted
	}

	blob, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("keystore: decode: %w", err)
	}
	if len(blob) < saltSize {
		return "", errors.New("keystore: ciphertext too short")
	}

	salt, rest := blob[:saltSize], blob[saltSize:]

	gcm, err := k.aead(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", errors.New("keystore: ciphertext too short")
	}

	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("keystore: decrypt: %w", err)
	}
	return string(plain), nil
}

// aead builds the AES-GCM cipher for one salt.
func (k *Keystore) aead(salt []byte) (cipher.AEAD, error) {
	derived := pbkdf2.Key(k.masterKey, salt, iterations, keySize, sha256.New)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("keystore: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: gcm: %w", err)
	}
	return gcm, nil
}
