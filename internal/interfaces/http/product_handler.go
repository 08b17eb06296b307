package http

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produmax-api/internal/application/catalog"
	"github.com/jhoicas/produmax-api/internal/application/dto"
)

// ProductHandler maneja el catálogo de productos. Lecturas públicas, escrituras de administrador.
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        name          formData  string  true   "Nombre"
// @Param        details       formData  string  false  "Detalle"
// @Param        stock         formData  int     false  "Stock"
// @Param        unitPrice     formData  string  true   "Precio unitario"
// @Param        comboPrice    formData  string  false  "Precio combo"
// @Param        unitName      formData  string  false  "Unidad"
// @Param        categoryName  formData  string  false  "Categoría"
// @Param        image         formData  file    true   "Imagen png/jpg/jpeg"
// @Success      201   {object}  dto.ProductEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductForm
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	img, closeImg, err := formImage(c)
	if err != nil {
		return badBody(c)
	}
	defer closeImg()

	out, err := h.uc.Create(c.UserContext(), in, img)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductEnvelope{Message: "producto creado", Product: *out})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductEnvelope{Message: "producto", Product: *out})
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20, máx 100)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Description  La imagen es opcional; si llega, reemplaza a la anterior.
// @Tags         products
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id            path      string  true   "ID del producto"
// @Param        name          formData  string  true   "Nombre"
// @Param        unitPrice     formData  string  true   "Precio unitario"
// @Param        image         formData  file    false  "Imagen png/jpg/jpeg"
// @Success      200  {object}  dto.ProductEnvelope
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.ProductForm
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	img, closeImg, err := formImage(c)
	if err != nil {
		return badBody(c)
	}
	defer closeImg()

	out, err := h.uc.Update(c.UserContext(), id, in, img)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ProductEnvelope{Message: "producto actualizado", Product: *out})
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "producto eliminado"})
}

// formImage abre el archivo "image" del formulario. Sin archivo devuelve (nil, noop, nil).
func formImage(c *fiber.Ctx) (*catalog.ImageUpload, func(), error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, func() {}, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*catalog.ImageUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &catalog.ImageUpload{Filename: fh.Filename, Size: fh.Size, Content: f}, func() { _ = f.Close() }, nil
}
