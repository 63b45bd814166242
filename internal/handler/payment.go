package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/service"
)

// PaymentHandler exposes the two payment steps.
type PaymentHandler struct {
	Flow *service.PaymentFlow
	Log  logrus.FieldLogger
}

// NewPaymentHandler returns a handler driving flow.
func NewPaymentHandler(flow *service.PaymentFlow, log logrus.FieldLogger) *PaymentHandler {
	return &PaymentHandler{Flow: flow, Log: log}
}

type intentReq struct {
	HoldKey string `json:"holdKey"`
	model.Instrument
}

type intentResp struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	DemoOTP         string `json:"demoOtp"`
	Message         string `json:"message"`
}

type confirmReq struct {
	PaymentIntentID string `json:"paymentIntentId"`
	OTP             string `json:"otp"`
}

// CreatePaymentIntent handles POST /api/create-payment-intent.  Card data
// is validated field by field; the first invalid field is named in the
// error.  The one-time code is returned as demoOtp since there is no SMS
// or mail channel.
func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req intentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.HoldKey) == "" {
		return badRequest(c, "holdKey is required")
	}

	res, err := h.Flow.CreateIntent(c.Request().Context(), userID, req.HoldKey, req.Instrument)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, intentResp{
		PaymentIntentID: res.PaymentIntentID,
		Amount:          res.Amount,
		DemoOTP:         res.OTP,
		Message:         "Enter the one-time code to confirm the payment",
	})
}

// ConfirmPayment handles POST /api/confirm-payment.  A wrong code leaves
// the hold and intent untouched so the caller can retry.
func (h *PaymentHandler) ConfirmPayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return err
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if req.PaymentIntentID == "" || req.OTP == "" {
		return badRequest(c, "paymentIntentId and otp are required")
	}

	booking, err := h.Flow.Confirm(c.Request().Context(), userID, req.PaymentIntentID, req.OTP)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Booking confirmed and paid successfully",
		"booking": booking,
	})
}
