package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type VoucherHandler struct {
	service ports.VoucherService
	log     *zap.Logger
}

func NewVoucherHandler(service ports.VoucherService, log *zap.Logger) *VoucherHandler {
	return &VoucherHandler{
		service: service,
		log:     log,
	}
}

// Get validates a voucher at the current instant, for counter lookups.
func (h *VoucherHandler) Get(c *fiber.Ctx) error {
	v, err := h.service.Validate(c.Context(), c.Params("code"), time.Now())
	if err != nil {
		return voucherError(err)
	}
	return c.JSON(v)
}

type issueVoucherRequest struct {
	FaceValue money.Cents `json:"face_value_cents"`
	ValidDays int         `json:"valid_days"`
}

func (h *VoucherHandler) Issue(c *fiber.Ctx) error {
	var req issueVoucherRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	v, err := h.service.Issue(c.Context(), req.FaceValue, req.ValidDays)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *VoucherHandler) Cancel(c *fiber.Ctx) error {
	if err := h.service.Cancel(c.Context(), c.Params("code")); err != nil {
		return voucherError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// voucherError maps voucher sentinels onto the error taxonomy: an unknown
// or expired code is the operator's input problem, a redeemed or cancelled
// voucher is a state conflict.
func voucherError(err error) error {
	switch {
	case errors.Is(err, domain.ErrVoucherNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrVoucherExpired):
		return domain.ValidationError("%s", err.Error())
	case errors.Is(err, domain.ErrVoucherAlreadyRedeemed), errors.Is(err, domain.ErrVoucherCancelled):
		return domain.ConflictError("%s", err.Error())
	default:
		return err
	}
}
