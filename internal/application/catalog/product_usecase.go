package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/produmax-api/internal/application/dto"
	"github.com/jhoicas/produmax-api/internal/domain"
	domaincatalog "github.com/jhoicas/produmax-api/internal/domain/catalog"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
	"github.com/jhoicas/produmax-api/internal/domain/repository"
	"github.com/jhoicas/produmax-api/pkg/logger"
)

// DefaultMaxImageBytes tamaño máximo de imagen por defecto (1 MB).
const DefaultMaxImageBytes = 1_000_000

var allowedImageExt = map[string]struct{}{".png": {}, ".jpg": {}, ".jpeg": {}}

// ProductUseCase CRUD de productos con imagen. La unidad y la categoría se resuelven por
// nombre; si no existen el producto queda sin unidad/categoría asignada.
type ProductUseCase struct {
	catalog  repository.CatalogRepository
	products repository.ProductRepository
	images   ImageStore
	log      *logger.Logger
	maxBytes int64
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	catalog repository.CatalogRepository,
	products repository.ProductRepository,
	images ImageStore,
	log *logger.Logger,
	maxBytes int64,
) *ProductUseCase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		catalog:  catalog,
		products: products,
		images:   images,
		log:      log.Named("products"),
		maxBytes: maxBytes,
	}
}

// Create crea un producto. La imagen es obligatoria.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.ProductForm, img *ImageUpload) (*dto.ProductResponse, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: la imagen es requerida", domain.ErrInvalidInput)
	}
	fields, err := uc.parseForm(in)
	if err != nil {
		return nil, err
	}
	ext, err := uc.checkImage(img)
	if err != nil {
		return nil, err
	}
	if err := uc.checkName(ctx, "", fields.name); err != nil {
		return nil, err
	}

	ref, err := uc.images.Save(ctx, ext, img.Content)
	if err != nil {
		return nil, fmt.Errorf("guardar imagen: %w", err)
	}

	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		ImagePath: ref,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.apply(p)
	if err := uc.link(ctx, p, in); err != nil {
		uc.discard(ctx, ref)
		return nil, err
	}
	if err := uc.products.Create(ctx, p); err != nil {
		uc.discard(ctx, ref)
		return nil, err
	}
	uc.log.Info().Str("product_id", p.ID).Str("image", ref).Msg("producto creado")
	return toProductResponse(p), nil
}

// GetByID obtiene un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.catalog.ListProducts(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Products: make([]dto.ProductResponse, 0, len(list)),
		Page:     dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range list {
		out.Products = append(out.Products, *toProductResponse(p))
	}
	return out, nil
}

// Update reemplaza los campos del producto. Si llega imagen nueva, la anterior se elimina
// después de guardar; si algo falla se elimina la nueva.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.ProductForm, img *ImageUpload) (*dto.ProductResponse, error) {
	fields, err := uc.parseForm(in)
	if err != nil {
		return nil, err
	}
	var ext string
	if img != nil {
		if ext, err = uc.checkImage(img); err != nil {
			return nil, err
		}
	}
	p, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.checkName(ctx, p.ID, fields.name); err != nil {
		return nil, err
	}

	previous := p.ImagePath
	var stored string
	if img != nil {
		if stored, err = uc.images.Save(ctx, ext, img.Content); err != nil {
			return nil, fmt.Errorf("guardar imagen: %w", err)
		}
		p.ImagePath = stored
	}
	fields.apply(p)
	p.UpdatedAt = time.Now()

	if err := uc.link(ctx, p, in); err != nil {
		uc.discard(ctx, stored)
		return nil, err
	}
	if err := uc.products.Update(ctx, p); err != nil {
		uc.discard(ctx, stored)
		return nil, err
	}
	if stored != "" {
		uc.discard(ctx, previous)
	}
	return toProductResponse(p), nil
}

// Delete elimina la imagen y luego el producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	if p.ImagePath != "" {
		if err := uc.images.Remove(ctx, p.ImagePath); err != nil {
			return fmt.Errorf("eliminar imagen: %w", err)
		}
	}
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

func (uc *ProductUseCase) find(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.catalog.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// checkName rechaza un nombre que ya usa otro producto, antes de tocar el almacén de imágenes.
func (uc *ProductUseCase) checkName(ctx context.Context, selfID, name string) error {
	other, err := uc.catalog.GetProductByName(ctx, name)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return fmt.Errorf("producto %q: %w", name, domain.ErrDuplicate)
	}
	return nil
}

// link resuelve unidad y categoría por nombre; sin coincidencia queda vacío.
func (uc *ProductUseCase) link(ctx context.Context, p *entity.Product, in dto.ProductForm) error {
	p.UnitID, p.CategoryID = "", ""
	if name := domaincatalog.NormalizeName(in.UnitName); name != "" {
		u, err := uc.catalog.GetUnitByName(ctx, name)
		if err != nil {
			return err
		}
		if u != nil {
			p.UnitID = u.ID
		}
	}
	if name := domaincatalog.NormalizeName(in.CategoryName); name != "" {
		c, err := uc.catalog.GetCategoryByName(ctx, name)
		if err != nil {
			return err
		}
		if c != nil {
			p.CategoryID = c.ID
		}
	}
	return nil
}

func (uc *ProductUseCase) checkImage(img *ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if _, ok := allowedImageExt[ext]; !ok {
		return "", fmt.Errorf("%w: extensión de imagen no permitida (png, jpg, jpeg)", domain.ErrInvalidInput)
	}
	if img.Size > uc.maxBytes {
		return "", fmt.Errorf("%w: la imagen supera %d bytes", domain.ErrInvalidInput, uc.maxBytes)
	}
	return ext, nil
}

func (uc *ProductUseCase) discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := uc.images.Remove(ctx, ref); err != nil {
		uc.log.Warn().Err(err).Str("image", ref).Msg("no se pudo eliminar la imagen")
	}
}

type productFields struct {
	name       string
	details    string
	stock      int
	unitPrice  decimal.Decimal
	comboPrice decimal.NullDecimal
}

func (f productFields) apply(p *entity.Product) {
	p.Name = f.name
	p.Details = f.details
	p.Stock = f.stock
	p.UnitPrice = f.unitPrice
	p.ComboPrice = f.comboPrice
}

func (uc *ProductUseCase) parseForm(in dto.ProductForm) (productFields, error) {
	f := productFields{
		name:    domaincatalog.NormalizeName(in.Name),
		details: strings.TrimSpace(in.Details),
		stock:   in.Stock,
	}
	if f.name == "" {
		return f, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if f.stock < 0 {
		return f, fmt.Errorf("%w: stock no puede ser negativo", domain.ErrInvalidInput)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.UnitPrice))
	if err != nil || price.IsNegative() {
		return f, fmt.Errorf("%w: unitPrice inválido", domain.ErrInvalidInput)
	}
	f.unitPrice = price
	if s := strings.TrimSpace(in.ComboPrice); s != "" {
		combo, err := decimal.NewFromString(s)
		if err != nil || combo.IsNegative() {
			return f, fmt.Errorf("%w: comboPrice inválido", domain.ErrInvalidInput)
		}
		f.comboPrice = decimal.NewNullDecimal(combo)
	}
	return f, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	out := &dto.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Details:    p.Details,
		Stock:      p.Stock,
		UnitPrice:  p.UnitPrice,
		ImagePath:  p.ImagePath,
		UnitID:     p.UnitID,
		CategoryID: p.CategoryID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.ComboPrice.Valid {
		combo := p.ComboPrice.Decimal
		out.ComboPrice = &combo
	}
	return out
}
