package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	h := BcryptHasher{}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("password")
		require.NoError(t, err)

		require.Len(t, got, 60, "bcrypt length is 60 letters as far as i know")
		require.Equal(t, "$2a$", got[:4], "bcrypt hash should have prefix '$2a$'")
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := h.Hash("password")
		require.NoError(t, err)
		second, err := h.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "per call random salt must make hashes differ")
	})

	t.Run("compare password ok", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "password")

		require.NoError(t, err)
	})

	t.Run("fail compare if wrong password", func(t *testing.T) {
		hash, err := h.Hash("password")
		require.NoError(t, err)

		err = h.Compare(hash, "wrong")

		require.Error(t, err)
	})

	t.Run("long passwords are not truncated", func(t *testing.T) {
		// bcrypt alone ignores everything after 72 bytes, the sha256
		// pre-hash must not
		long := make([]byte, 100)
		for i := range long {
			long[i] = 'a'
		}

		hash, err := h.Hash(string(long))
		require.NoError(t, err)

		err = h.Compare(hash, string(long[:90]))
		require.Error(t, err, "passwords differing after byte 72 must not compare equal")
	})
}
