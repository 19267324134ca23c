// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package ledger

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// keyChain derives and applies the end-to-end encryption key of a
// password-protected budget file. The key exists only in process memory and
// is never transmitted to the server.
type keyChain struct {
	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// newKeyChain constructs a keyChain with the Argon2id parameters
// recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func newKeyChain() *keyChain {
	return &keyChain{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}
}

// DeriveKey derives the 256-bit budget file key from the budget password and
// the server-stored key-derivation salt using Argon2id.
func (k *keyChain) DeriveKey(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		k.argonTime,
		k.argonMemory,
		k.argonThreads,
		k.argonKeyLen,
	)
}

// Open decrypts a blob produced by Seal (or by another device) with key
// using AES-256-GCM. The blob layout is nonce (12 bytes) ‖ ciphertext. The
// blob must be at least as long as the GCM nonce. Returns the plaintext, or
// an error if the blob is too short, the key is wrong, or the ciphertext is
// corrupted (authentication-tag mismatch).
func (k *keyChain) Open(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	// Split the blob into nonce and actual ciphertext.
	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	// Decrypt and verify auth tag. An error here almost always means the
	// wrong budget password produced a wrong key.
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// Seal encrypts plaintext with key using AES-256-GCM. A random 12-byte
// nonce is prepended to the ciphertext so that Open can locate it:
// blob = nonce ‖ ciphertext. Returns an error if cipher creation or the
// random nonce read fails.
func (k *keyChain) Seal(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend the nonce so Open can split it out without side channel.
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}
