package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jhoicas/produmax-api/internal/application/catalog"
)

var _ catalog.ImageStore = (*LocalImageStore)(nil)

// LocalImageStore guarda imágenes en un directorio local con nombre uuid + extensión.
// La referencia devuelta es "<prefix>/<archivo>", la misma ruta con la que se sirven.
type LocalImageStore struct {
	dir    string
	prefix string
}

// NewLocalImageStore crea el directorio si no existe.
func NewLocalImageStore(dir, prefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de imágenes: %w", err)
	}
	return &LocalImageStore{dir: dir, prefix: prefix}, nil
}

// Save escribe el contenido en un archivo nuevo.
func (s *LocalImageStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.New().String() + ext
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return path.Join(s.prefix, name), nil
}

// Remove elimina el archivo de la referencia. Un archivo ya inexistente no es error.
func (s *LocalImageStore) Remove(_ context.Context, ref string) error {
	// solo el nombre: la referencia nunca sale del directorio
	name := path.Base(ref)
	if name == "." || name == "/" {
		return fmt.Errorf("referencia de imagen inválida: %q", ref)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
