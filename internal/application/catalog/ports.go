package catalog

import (
	"context"
	"io"
)

// ImageStore almacén de imágenes de productos. Save devuelve la referencia (ruta relativa)
// con la que luego se sirve y se elimina el archivo.
type ImageStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}

// ImageUpload archivo recibido en el formulario.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}
