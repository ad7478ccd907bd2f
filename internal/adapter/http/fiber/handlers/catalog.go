package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type CatalogHandler struct {
	service ports.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service ports.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) List(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return domain.ValidationError("invalid product id")
	}

	p, err := h.service.GetProduct(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(p)
}

type createProductRequest struct {
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unit_price_cents"`
	StockQty  int         `json:"stock_qty"`
}

func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	var req createProductRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	p, err := h.service.CreateProduct(c.Context(), req.Name, req.UnitPrice, req.StockQty)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

type adjustStockRequest struct {
	Delta int `json:"delta"`
}

func (h *CatalogHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return domain.ValidationError("invalid product id")
	}

	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	p, err := h.service.AdjustStock(c.Context(), int64(id), req.Delta)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(p)
}
