package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/pkg/money"
)

type CheckoutHandler struct {
	service  ports.CheckoutService
	receipts ports.ReceiptService
	log      *zap.Logger
}

func NewCheckoutHandler(service ports.CheckoutService, receipts ports.ReceiptService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		receipts: receipts,
		log:      log,
	}
}

type submitRequest struct {
	SessionID   string            `json:"session_id"`
	Lines       []domain.CartLine `json:"lines"`
	CustomerRef string            `json:"customer_ref"`
	VoucherCode string            `json:"voucher_code"`
	Cash        money.Cents       `json:"cash_cents"`
	Card        money.Cents       `json:"card_cents"`
}

type submitResponse struct {
	TransactionID string      `json:"transaction_id"`
	NetTotal      money.Cents `json:"net_total_cents"`
	ChangeDue     money.Cents `json:"change_due_cents"`
}

func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	tx, err := h.service.Submit(c.Context(), ports.CheckoutRequest{
		SessionID:   req.SessionID,
		Lines:       req.Lines,
		CustomerRef: req.CustomerRef,
		VoucherCode: req.VoucherCode,
		Cash:        req.Cash,
		Card:        req.Card,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(submitResponse{
		TransactionID: tx.ID,
		NetTotal:      tx.NetTotal,
		ChangeDue:     tx.ChangeDue,
	})
}

func (h *CheckoutHandler) Get(c *fiber.Ctx) error {
	tx, err := h.service.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if tx == nil {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}
	return c.JSON(tx)
}

// List returns transactions for a business day (?date=2006-01-02), or the
// most recent ones when no date is given.
func (h *CheckoutHandler) List(c *fiber.Ctx) error {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return domain.ValidationError("invalid date %q, expected YYYY-MM-DD", raw)
		}
		date = &parsed
	}

	limit := c.QueryInt("limit", 50)
	txs, err := h.service.ListTransactions(c.Context(), date, limit)
	if err != nil {
		return err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return c.JSON(txs)
}

// Receipt renders the printable text form.
func (h *CheckoutHandler) Receipt(c *fiber.Ctx) error {
	tx, err := h.service.GetTransaction(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if tx == nil {
		return fiber.NewError(fiber.StatusNotFound, "transaction not found")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(h.receipts.Render(h.receipts.Format(tx)))
}
