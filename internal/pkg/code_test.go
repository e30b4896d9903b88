package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	t.Run("Codes are 5 characters over the hex alphabet", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateRoomCode()

			require.NoError(t, err)
			assert.Len(t, code, RoomCodeLength)
			for _, r := range code {
				assert.True(t, strings.ContainsRune(roomCodeAlphabet, r), "unexpected symbol %q", r)
			}
		}
	})
}

func TestGenerateClientID(t *testing.T) {
	t.Run("Tokens are non-empty and distinct", func(t *testing.T) {
		first := GenerateClientID()
		second := GenerateClientID()

		assert.NotEmpty(t, first)
		assert.NotEqual(t, first, second)
	})
}
