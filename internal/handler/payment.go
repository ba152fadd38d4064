package handler

import (
    "io"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/service"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 16

// PaymentHandler serves checkout creation and the provider webhook.
type PaymentHandler struct {
    Service *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler and panics if svc is nil.
func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
    if svc == nil {
        panic("nil service passed to NewPaymentHandler")
    }
    return &PaymentHandler{Service: svc}
}

// Checkout handles POST /payments/checkout with body {"booking_id": n} and
// answers {"url": ...} pointing at the hosted payment page.
func (h *PaymentHandler) Checkout(c echo.Context) error {
    var body struct {
        BookingID uint64 `json:"booking_id"`
    }
    if err := c.Bind(&body); err != nil || body.BookingID == 0 {
        return errJSON(c, http.StatusBadRequest, "booking_id is required")
    }
    url, err := h.Service.Checkout(c.Request().Context(), body.BookingID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"url": url})
}

// Webhook handles POST /payments/webhook.  The raw body is needed for
// signature verification, so it is read directly rather than bound.
func (h *PaymentHandler) Webhook(c echo.Context) error {
    payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
    if err != nil {
        return errJSON(c, http.StatusBadRequest, "unreadable body")
    }
    sig := c.Request().Header.Get("Stripe-Signature")
    if err := h.Service.HandleWebhook(c.Request().Context(), payload, sig); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// PaymentSuccess is the redirect target after a completed checkout.
func PaymentSuccess(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Payment completed. You can return to the app."})
}

// PaymentCancel is the redirect target after an abandoned checkout.
func PaymentCancel(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"ok": false, "message": "Payment cancelled. You can return to the app."})
}
