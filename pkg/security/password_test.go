package security

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func legacyHash(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:])
}

func TestHashVerify_Bcrypt(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost, false)
	require.NoError(t, err)

	hash, err := h.Hash("secreto")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto", hash, "nunca se guarda en claro")

	mode, err := h.Verify(hash, "secreto")
	require.NoError(t, err)
	assert.Equal(t, ModeBcrypt, mode)
	assert.False(t, h.NeedsRehash(mode))

	_, err = h.Verify(hash, "otro")
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerify_LegacyDeshabilitadoPorDefecto(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost, false)
	require.NoError(t, err)

	mode, err := h.Verify(legacyHash("secreto"), "secreto")
	assert.ErrorIs(t, err, ErrUnsupportedHash)
	assert.Equal(t, ModeLegacySHA256, mode)
}

func TestVerify_LegacyHabilitadoReportaModo(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost, true)
	require.NoError(t, err)

	mode, err := h.Verify(legacyHash("secreto"), "secreto")
	require.NoError(t, err)
	assert.Equal(t, ModeLegacySHA256, mode)
	assert.True(t, h.NeedsRehash(mode))

	_, err = h.Verify(legacyHash("secreto"), "malo")
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestVerify_FormatoDesconocido(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost, true)
	require.NoError(t, err)
	_, err = h.Verify("plano", "plano")
	assert.ErrorIs(t, err, ErrUnsupportedHash)
}

func TestNewPasswordHasher_CostoInvalidoFallaAlArrancar(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MaxCost+1, false)
	assert.Error(t, err)
}
