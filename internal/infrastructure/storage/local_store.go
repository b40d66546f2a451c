package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/stock-manager-api/internal/application/usecase"
)

// LocalStore guarda las imágenes en disco; el directorio se sirve como estático bajo PublicURL.
type LocalStore struct {
	dir       string
	publicURL string
}

var _ usecase.ImageStore = (*LocalStore)(nil)

// NewLocalStore crea el directorio si no existe.
func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, publicURL: publicURL}, nil
}

// Dir directorio raíz (para servirlo como estático).
func (s *LocalStore) Dir() string { return s.dir }

// Put escribe en un temporal y renombra, para no dejar ficheros a medias.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("storage: clave inválida %q", key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("storage: temporal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("storage: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: cerrar: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("storage: mover: %w", err)
	}
	return publicURL(s.publicURL, key), nil
}
