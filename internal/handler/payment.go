package handler

import (
	"errors"
	"io"
	"net/http"

	"prepkit-store/internal/dto"
	"prepkit-store/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Amount <= 0 || req.PlanName == "" || req.UserEmail == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "amount, planName and userEmail are required")
	}

	result, err := h.paymentService.CreateOrder(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) || errors.Is(err, service.ErrAmountMismatch) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		log.Error().Err(err).Msg("create order failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create order")
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment verification fields")
	}

	err := h.paymentService.VerifyPayment(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) || errors.Is(err, service.ErrInvalidPlan) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return err
	}

	return c.JSON(http.StatusOK, &dto.VerifyResponse{Verified: true})
}

func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")

	err = h.paymentService.HandleWebhook(ctx, body, signature)
	if err != nil {
		if errors.Is(err, service.ErrSignatureMismatch) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		log.Error().Err(err).Msg("handle webhook failed")
		return err
	}

	return c.NoContent(http.StatusOK)
}
