package cookie

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	encryptionInfo = "bookshelf/cookie/encryption"
	keySize        = 32
)

// keyPair holds the AES-GCM key derived from one secret.
type keyPair struct {
	encrypt []byte
}

func deriveKeys(secret string) (keyPair, error) {
	enc, err := deriveKey(secret, encryptionInfo)
	if err != nil {
		return keyPair{}, err
	}
	return keyPair{encrypt: enc}, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, keySize)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
