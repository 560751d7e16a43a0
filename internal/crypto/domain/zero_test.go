package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	t.Run("clears seed and salt together", func(t *testing.T) {
		seed := bytes.Repeat([]byte{0xab}, 32)
		salt := bytes.Repeat([]byte{0x01}, 16)

		Zero(seed, salt)

		assert.Equal(t, make([]byte, 32), seed)
		assert.Equal(t, make([]byte, 16), salt)
	})

	t.Run("nil and empty buffers", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil, []byte{}) })
		assert.NotPanics(t, func() { Zero() })
	})
}
