package pkg

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// roomCodeAlphabet has 16 symbols, so mapping bytes with a modulo keeps the
// sampling uniform.
const roomCodeAlphabet = "0123456789ABCDEF"

const RoomCodeLength = 5

// GenerateRoomCode samples a 5-character code from a cryptographically
// strong source.
func GenerateRoomCode() (string, error) {
	buf := make([]byte, RoomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, RoomCodeLength)
	for i, b := range buf {
		code[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}

	return string(code), nil
}

// GenerateClientID issues the opaque identity token a client stores locally
// to re-claim its player slot.
func GenerateClientID() string {
	return uuid.NewString()
}
