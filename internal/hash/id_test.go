package hash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID([]byte(tt.data)))
		})
	}
}

func TestSlot(t *testing.T) {
	t.Run("reduces modulo n", func(t *testing.T) {
		slot := Slot([]byte("prova42"), 97)
		require.Less(t, slot, uint64(97))
	})

	t.Run("n=1 always collides into slot 0", func(t *testing.T) {
		for _, k := range []string{"a", "b", "c", "prova0", "prova99"} {
			require.Equal(t, uint64(0), Slot([]byte(k), 1))
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		key := []byte("same-key")
		require.Equal(t, Slot(key, 1000), Slot(key, 1000))
	})
}

func randString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := range b {
		b[i] = letters[seededRand.Intn(len(letters))]
	}

	return string(b)
}

func BenchmarkID(b *testing.B) {
	randBytes := []byte(randString(20))
	b.ResetTimer()
	for b.Loop() {
		ID(randBytes)
	}
}
