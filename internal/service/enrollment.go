package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/payment"
	"github.com/coursedesk/coursedesk/internal/store"
)

var (
	// ErrCourseUnavailable covers both a missing course and an inactive one.
	ErrCourseUnavailable = errors.New("course not available")

	// ErrPaymentRequired is returned when a direct enrollment is attempted
	// for a nonzero final price and the configured provider does not allow
	// the bypass.
	ErrPaymentRequired = errors.New("payment required for this course")

	// ErrAlreadyEnrolled is returned for a duplicate (course, email) pair.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")

	// ErrNothingToPay is returned when an order is requested for a course
	// whose final price is zero; free enrollments never touch the gateway.
	ErrNothingToPay = errors.New("final price is zero, enroll directly")
)

// EnrollmentService orchestrates the enrollment lifecycle: price
// computation, free and coupon enrollment, and the order/verify
// checkout handshake through the injected payment provider.
type EnrollmentService struct {
	store    *store.Store
	coupons  *CouponService
	provider payment.Provider
}

// NewEnrollmentService creates an EnrollmentService using the given
// checkout provider for paid flows.
func NewEnrollmentService(st *store.Store, coupons *CouponService, provider payment.Provider) *EnrollmentService {
	return &EnrollmentService{store: st, coupons: coupons, provider: provider}
}

// Provider exposes the configured checkout provider, for handlers that
// need its public key.
func (s *EnrollmentService) Provider() payment.Provider {
	return s.provider
}

// EnrollRequest is a direct (no-checkout) enrollment submission.
type EnrollRequest struct {
	CourseID   int64
	Email      string
	Name       string
	CouponCode string
}

// finalPrice recomputes the charge server-side: the course's effective
// price, reduced by a validated coupon, never below zero. Client-supplied
// amounts are not trusted.
func (s *EnrollmentService) finalPrice(ctx context.Context, course *model.Course, couponCode string) (float64, error) {
	amount := course.EffectivePrice()
	if couponCode == "" {
		return amount, nil
	}
	quote, err := s.coupons.Validate(ctx, couponCode, amount)
	if err != nil {
		return 0, err
	}
	return quote.FinalAmount, nil
}

// Enroll creates an enrollment without going through checkout. It
// succeeds when the recomputed final price is zero (free course, free
// via price, or free via coupon), or when the configured provider
// permits direct enrollment of paid courses (the sandbox).
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*model.Enrollment, error) {
	course, err := s.activeCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	final, err := s.finalPrice(ctx, course, req.CouponCode)
	if err != nil {
		return nil, err
	}

	var source string
	switch {
	case final == 0 && req.CouponCode != "" && course.EffectivePrice() > 0:
		source = model.SourceCoupon
	case final == 0:
		source = model.SourceFree
	default:
		if !s.provider.AllowsDirectEnrollment() {
			return nil, ErrPaymentRequired
		}
		source = model.SourceDevBypass
	}

	enr := &model.Enrollment{
		CourseID:   course.ID,
		Email:      req.Email,
		Name:       req.Name,
		CouponCode: req.CouponCode,
		AmountPaid: 0,
		Source:     source,
	}
	if err := s.store.CreateEnrollment(ctx, enr); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if req.CouponCode != "" {
		// Best effort: the enrollment stands even if the counter bump fails.
		_ = s.store.IncrementCouponUse(ctx, req.CouponCode)
	}
	return enr, nil
}

// CreateOrder registers a gateway order for a paid enrollment and
// persists it for later verification.
func (s *EnrollmentService) CreateOrder(ctx context.Context, courseID int64, email, couponCode string) (*model.Order, error) {
	course, err := s.activeCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetEnrollment(ctx, courseID, email); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	final, err := s.finalPrice(ctx, course, couponCode)
	if err != nil {
		return nil, err
	}
	if final <= 0 {
		return nil, ErrNothingToPay
	}

	receipt := uuid.NewString()
	providerOrderID, err := s.provider.CreateOrder(ctx, final, "INR", receipt)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ProviderOrderID: providerOrderID,
		CourseID:        course.ID,
		Email:           email,
		Amount:          final,
		Currency:        "INR",
		Receipt:         receipt,
		CouponCode:      couponCode,
		Status:          model.OrderCreated,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyRequest is the widget's completion triple plus the enrollment
// identity it completes.
type VerifyRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	Email     string
	Name      string
}

// VerifyPayment checks the completion triple against the stored order.
// Only after the signature validates is the order marked paid and the
// enrollment created; a bad signature leaves the order untouched.
func (s *EnrollmentService) VerifyPayment(ctx context.Context, req VerifyRequest) (*model.Enrollment, error) {
	order, err := s.store.GetOrderByProviderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.provider.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		return nil, err
	}

	if err := s.store.SetOrderStatus(ctx, order.ProviderOrderID, model.OrderPaid); err != nil {
		return nil, err
	}

	email := req.Email
	if email == "" {
		email = order.Email
	}
	enr := &model.Enrollment{
		CourseID:   order.CourseID,
		Email:      email,
		Name:       req.Name,
		CouponCode: order.CouponCode,
		AmountPaid: order.Amount,
		Source:     model.SourcePayment,
		PaymentID:  req.PaymentID,
	}
	if err := s.store.CreateEnrollment(ctx, enr); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if order.CouponCode != "" {
		_ = s.store.IncrementCouponUse(ctx, order.CouponCode)
	}
	return enr, nil
}

func (s *EnrollmentService) activeCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCourseUnavailable
		}
		return nil, err
	}
	if course.Status != model.CourseActive {
		return nil, ErrCourseUnavailable
	}
	return course, nil
}
