package handler

import (
	"errors"
	"net/http"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/service"
	"github.com/coursedesk/coursedesk/internal/store"
)

// EnrollmentHandler serves enrollment submission and the admin
// enrollment listing.
type EnrollmentHandler struct {
	store       *store.Store
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler creates an EnrollmentHandler.
func NewEnrollmentHandler(st *store.Store, enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{store: st, enrollments: enrollments}
}

type enrollRequest struct {
	CourseID   int64  `json:"course_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	CouponCode string `json:"coupon_code"`
}

// Create submits a direct enrollment: free courses, coupon-zeroed
// prices, or the sandbox provider's development bypass. Paid courses on
// the live gateway must go through the order/verify handshake instead.
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.CourseID == 0 || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Course ID and email are required")
		return
	}

	enr, err := h.enrollments.Enroll(r.Context(), service.EnrollRequest{
		CourseID:   req.CourseID,
		Email:      req.Email,
		Name:       req.Name,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		h.writeEnrollError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"enrollment": enr,
	})
}

// List returns enrollments, optionally filtered by course_id.
// GET /api/v1/admin/enrollments
func (h *EnrollmentHandler) List(w http.ResponseWriter, r *http.Request) {
	courseID := queryInt64(r, "course_id", 0)

	enrollments, err := h.store.ListEnrollments(r.Context(), courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list enrollments: "+err.Error())
		return
	}

	resources := make([]interface{}, 0, len(enrollments))
	for i := range enrollments {
		resources = append(resources, &enrollments[i])
	}
	writeJSON(w, http.StatusOK, model.ListResponse{
		Success:  true,
		Resource: resources,
		Meta:     &model.ResponseMeta{Count: len(resources)},
	})
}

func (h *EnrollmentHandler) writeEnrollError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCourseUnavailable):
		writeError(w, http.StatusNotFound, "Course not available")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		writeError(w, http.StatusConflict, "Already enrolled in this course")
	case errors.Is(err, service.ErrPaymentRequired):
		writeError(w, http.StatusBadRequest, "Payment required for this course")
	case isCouponRejection(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Enrollment failed: "+err.Error())
	}
}
