package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

type CustomerHandler struct {
	service ports.CustomerService
	log     *zap.Logger
}

func NewCustomerHandler(service ports.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

// Find looks up a customer by phone (?phone=).
func (h *CustomerHandler) Find(c *fiber.Ctx) error {
	customer, err := h.service.FindByPhone(c.Context(), c.Query("phone"))
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(customer)
}

type registerCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req registerCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationError("invalid body")
	}

	customer, err := h.service.Register(c.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}
