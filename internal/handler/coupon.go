package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/service"
	"github.com/coursedesk/coursedesk/internal/store"
)

// CouponHandler serves coupon validation for the storefront and coupon
// management for admins.
type CouponHandler struct {
	store   *store.Store
	coupons *service.CouponService
}

// NewCouponHandler creates a CouponHandler.
func NewCouponHandler(st *store.Store, coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{store: st, coupons: coupons}
}

type validateCouponRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// Validate checks a coupon against the amount being charged and returns
// the server-computed discount. Rejections carry the reason verbatim so
// the storefront can surface it.
// POST /api/v1/coupons/validate
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Coupon code is required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "Amount cannot be negative")
		return
	}

	quote, err := h.coupons.Validate(r.Context(), req.Code, req.Amount)
	if err != nil {
		if isCouponRejection(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Coupon validation error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"code":         quote.Code,
		"discount":     quote.Discount,
		"final_amount": quote.FinalAmount,
	})
}

// List returns all coupons.
// GET /api/v1/admin/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.store.ListCoupons(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list coupons: "+err.Error())
		return
	}

	resources := make([]interface{}, 0, len(coupons))
	for i := range coupons {
		resources = append(resources, &coupons[i])
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Success:  true,
		Resource: resources,
		Meta:     &model.ResponseMeta{Count: len(resources)},
	})
}

type createCouponRequest struct {
	Code      string  `json:"code"`
	Kind      string  `json:"kind"`
	Value     float64 `json:"value"`
	MinAmount float64 `json:"min_amount"`
	MaxUses   int     `json:"max_uses"`
	ExpiresAt string  `json:"expires_at"` // YYYY-MM-DD, empty for no expiry
}

// Create adds a new coupon.
// POST /api/v1/admin/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Coupon code is required")
		return
	}
	if req.Kind != model.CouponPercent && req.Kind != model.CouponFlat {
		writeError(w, http.StatusBadRequest, "Kind must be percent or flat")
		return
	}
	if req.Value <= 0 || (req.Kind == model.CouponPercent && req.Value > 100) {
		writeError(w, http.StatusBadRequest, "Invalid coupon value")
		return
	}

	coupon := &model.Coupon{
		Code:      req.Code,
		Kind:      req.Kind,
		Value:     req.Value,
		MinAmount: req.MinAmount,
		MaxUses:   req.MaxUses,
		IsActive:  true,
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expires_at, want YYYY-MM-DD")
			return
		}
		coupon.ExpiresAt = &t
	}

	if err := h.store.CreateCoupon(r.Context(), coupon); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Coupon code already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create coupon: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"coupon":  coupon,
	})
}

func isCouponRejection(err error) bool {
	return errors.Is(err, service.ErrCouponInvalid) ||
		errors.Is(err, service.ErrCouponExpired) ||
		errors.Is(err, service.ErrCouponExhausted) ||
		errors.Is(err, service.ErrCouponMinimum)
}
