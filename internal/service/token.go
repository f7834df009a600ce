package service

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of an issued token; the key is its hex form (40 chars).
const TokenBytes = 20

func NewTokenKey() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
