package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashMode algoritmo con el que se verificó una contraseña.
type HashMode string

const (
	ModeBcrypt       HashMode = "bcrypt"
	ModeLegacySHA256 HashMode = "sha256-legacy"
)

var (
	// ErrMismatch la contraseña no corresponde al hash.
	ErrMismatch = errors.New("security: contraseña incorrecta")
	// ErrUnsupportedHash formato de hash desconocido o modo legacy deshabilitado.
	ErrUnsupportedHash = errors.New("security: formato de hash no soportado")
)

// PasswordHasher hash de contraseñas con bcrypt. Los hashes SHA-256 heredados
// solo se verifican si AllowLegacy está activo; nunca se generan.
type PasswordHasher struct {
	cost        int
	allowLegacy bool
}

// NewPasswordHasher comprueba que bcrypt funciona antes de devolver el hasher.
// Un error aquí debe impedir el arranque.
func NewPasswordHasher(cost int, allowLegacy bool) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h := &PasswordHasher{cost: cost, allowLegacy: allowLegacy}
	if err := h.selfTest(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *PasswordHasher) selfTest() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("self-test"), h.cost)
	if err != nil {
		return fmt.Errorf("security: bcrypt no disponible: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte("self-test")); err != nil {
		return fmt.Errorf("security: bcrypt no verifica: %w", err)
	}
	return nil
}

// Hash genera siempre un hash bcrypt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("security: hash: %w", err)
	}
	return string(b), nil
}

// Verify compara la contraseña con el hash y devuelve el modo usado.
func (h *PasswordHasher) Verify(hash, password string) (HashMode, error) {
	switch {
	case strings.HasPrefix(hash, "$2"):
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return ModeBcrypt, ErrMismatch
			}
			return ModeBcrypt, fmt.Errorf("security: verificar: %w", err)
		}
		return ModeBcrypt, nil
	case isLegacySHA256(hash):
		if !h.allowLegacy {
			return ModeLegacySHA256, ErrUnsupportedHash
		}
		sum := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(strings.ToLower(hash))) != 1 {
			return ModeLegacySHA256, ErrMismatch
		}
		return ModeLegacySHA256, nil
	default:
		return "", ErrUnsupportedHash
	}
}

// NeedsRehash indica si el hash debe migrarse a bcrypt tras un login correcto.
func (h *PasswordHasher) NeedsRehash(mode HashMode) bool {
	return mode != ModeBcrypt
}

func isLegacySHA256(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
