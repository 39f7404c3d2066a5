package handler

import (
	"errors"
	"net/http"

	"github.com/coursedesk/coursedesk/internal/payment"
	"github.com/coursedesk/coursedesk/internal/service"
	"github.com/coursedesk/coursedesk/internal/store"
)

// PaymentHandler serves the checkout handshake: order creation ahead of
// the hosted widget, and verification of the widget's completion triple.
type PaymentHandler struct {
	enrollments *service.EnrollmentService
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(enrollments *service.EnrollmentService) *PaymentHandler {
	return &PaymentHandler{enrollments: enrollments}
}

type createOrderRequest struct {
	CourseID   int64  `json:"course_id"`
	Email      string `json:"email"`
	CouponCode string `json:"coupon_code"`
}

// CreateOrder registers a gateway order for a paid enrollment. The
// response carries everything the widget needs: order ID, amount,
// currency, and the gateway's public key.
// POST /api/v1/payments/create-order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.CourseID == 0 || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Course ID and email are required")
		return
	}

	order, err := h.enrollments.CreateOrder(r.Context(), req.CourseID, req.Email, req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseUnavailable):
			writeError(w, http.StatusNotFound, "Course not available")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			writeError(w, http.StatusConflict, "Already enrolled in this course")
		case errors.Is(err, service.ErrNothingToPay):
			writeError(w, http.StatusBadRequest, "Nothing to pay, enroll directly")
		case isCouponRejection(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create order: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"order_id": order.ProviderOrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"receipt":  order.Receipt,
		"key_id":   h.enrollments.Provider().KeyID(),
	})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// Verify checks the widget's completion triple. Only a valid signature
// marks the order paid and creates the enrollment; a bad one answers
// 400 and leaves the order untouched.
// POST /api/v1/payments/verify
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "Order ID, payment ID, and signature are required")
		return
	}

	enr, err := h.enrollments.VerifyPayment(r.Context(), service.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Email:     req.Email,
		Name:      req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrBadSignature):
			writeError(w, http.StatusBadRequest, "Payment verification failed")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Unknown order")
		case errors.Is(err, service.ErrAlreadyEnrolled):
			writeError(w, http.StatusConflict, "Already enrolled in this course")
		default:
			writeError(w, http.StatusInternalServerError, "Payment verification error: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"enrollment": enr,
	})
}
