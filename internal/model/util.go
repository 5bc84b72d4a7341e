package model

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/google/uuid"
)

const SaltLength = 16

// GenerateSalt returns SaltLength random alphanumeric characters.
func GenerateSalt() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	salt := base58.Encode(id[:])
	for len(salt) < SaltLength {
		more, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("generating salt: %w", err)
		}
		salt += base58.Encode(more[:])
	}
	return salt[:SaltLength], nil
}
