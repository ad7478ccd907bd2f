package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/internal/service/cart"
	"github.com/seu-repo/pdv-varejo/internal/service/pricing"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

// SessionHandler exposes the cart session operations. Prices always come
// from the catalog; the client only ever sends product ids and quantities.
type SessionHandler struct {
	carts    *cart.Manager
	catalog  ports.CatalogService
	vouchers ports.VoucherService
	log      *zap.Logger
}

func NewSessionHandler(carts *cart.Manager, catalog ports.CatalogService, vouchers ports.VoucherService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		carts:    carts,
		catalog:  catalog,
		vouchers: vouchers,
		log:      log,
	}
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	Totals    pricing.Totals    `json:"totals"`
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	crt := h.carts.Create()
	h.log.Info("Cart session created", zap.String("session_id", crt.SessionID))
	return c.Status(fiber.StatusCreated).JSON(h.respond(crt, nil))
}

// Get returns the cart with a totals preview. An optional ?voucher= query
// previews the discount without reserving the voucher.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	crt, err := h.carts.Get(c.Params("id"))
	if err != nil {
		return sessionError(err)
	}

	var voucher *domain.Voucher
	if code := c.Query("voucher"); code != "" {
		voucher, err = h.vouchers.Validate(c.Context(), code, time.Now())
		if err != nil {
			return voucherError(err)
		}
	}

	return c.JSON(h.respond(crt, voucher))
}

type addLineRequest struct {
	ProductID    int64       `json:"product_id"`
	Quantity     int         `json:"quantity"`
	LineDiscount money.Cents `json:"line_discount_cents"`
}

func (h *SessionHandler) AddLine(c *fiber.Ctx) error {
	var req addLineRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	p, err := h.catalog.GetProduct(c.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.ValidationError("product %d not found", req.ProductID)
		}
		return err
	}

	line := domain.CartLine{
		ProductID:    p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		Quantity:     req.Quantity,
		LineDiscount: req.LineDiscount,
	}
	if err := h.carts.AddLine(c.Params("id"), line); err != nil {
		return sessionError(err)
	}

	return h.Get(c)
}

type updateLineRequest struct {
	Quantity     *int         `json:"quantity"`
	LineDiscount *money.Cents `json:"line_discount_cents"`
}

func (h *SessionHandler) UpdateLine(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return domain.ValidationError("invalid product id")
	}

	var req updateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}
	if req.Quantity == nil && req.LineDiscount == nil {
		return domain.ValidationError("nothing to update")
	}

	sessionID := c.Params("id")
	if req.Quantity != nil {
		if err := h.carts.UpdateQuantity(sessionID, int64(productID), *req.Quantity); err != nil {
			return sessionError(err)
		}
	}
	if req.LineDiscount != nil {
		if err := h.carts.SetDiscount(sessionID, int64(productID), *req.LineDiscount); err != nil {
			return sessionError(err)
		}
	}

	return h.Get(c)
}

func (h *SessionHandler) RemoveLine(c *fiber.Ctx) error {
	productID, err := c.ParamsInt("productId")
	if err != nil {
		return domain.ValidationError("invalid product id")
	}
	if err := h.carts.RemoveLine(c.Params("id"), int64(productID)); err != nil {
		return sessionError(err)
	}
	return h.Get(c)
}

func (h *SessionHandler) Clear(c *fiber.Ctx) error {
	if err := h.carts.Clear(c.Params("id")); err != nil {
		return sessionError(err)
	}
	return h.Get(c)
}

func (h *SessionHandler) Destroy(c *fiber.Ctx) error {
	h.carts.Destroy(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) respond(crt *domain.Cart, voucher *domain.Voucher) sessionResponse {
	lines := crt.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return sessionResponse{
		SessionID: crt.SessionID,
		Lines:     lines,
		Totals:    pricing.ComputeTotals(crt.Lines, voucher),
	}
}

// sessionError maps cart sentinels onto the error taxonomy.
func sessionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateLine), errors.Is(err, domain.ErrLineNotFound):
		return domain.ValidationError("%s", err.Error())
	default:
		return err
	}
}
