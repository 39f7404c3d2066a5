package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/payment"
	"github.com/coursedesk/coursedesk/internal/store"
)

// countingProvider records gateway calls so tests can assert that free
// enrollments never touch the gateway.
type countingProvider struct {
	bypass       bool
	orderCalls   int
	verifyCalls  int
	failVerify   bool
	nextOrderSeq int
}

func (p *countingProvider) Name() string  { return "counting" }
func (p *countingProvider) KeyID() string { return "key_test" }

func (p *countingProvider) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (string, error) {
	p.orderCalls++
	p.nextOrderSeq++
	return fmt.Sprintf("order_test_%d", p.nextOrderSeq), nil
}

func (p *countingProvider) VerifySignature(orderID, paymentID, signature string) error {
	p.verifyCalls++
	if p.failVerify {
		return payment.ErrBadSignature
	}
	return nil
}

func (p *countingProvider) AllowsDirectEnrollment() bool { return p.bypass }

func newTestEnrollments(t *testing.T, provider payment.Provider) (*EnrollmentService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewEnrollmentService(st, NewCouponService(st), provider), st
}

func mustCreateCourse(t *testing.T, st *store.Store, course *model.Course) *model.Course {
	t.Helper()
	if err := st.CreateCourse(context.Background(), course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return course
}

func TestEnrollFreeCourseSkipsGateway(t *testing.T) {
	provider := &countingProvider{}
	svc, st := newTestEnrollments(t, provider)
	course := mustCreateCourse(t, st, &model.Course{Title: "Free", Price: 0, Status: model.CourseActive})

	enr, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: course.ID, Email: "a@b.com", Name: "A"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enr.Source != model.SourceFree {
		t.Errorf("Source: got %q, want %q", enr.Source, model.SourceFree)
	}
	if enr.AmountPaid != 0 {
		t.Errorf("AmountPaid: got %v, want 0", enr.AmountPaid)
	}
	if provider.orderCalls != 0 || provider.verifyCalls != 0 {
		t.Errorf("gateway was called for a free enrollment: %d orders, %d verifies", provider.orderCalls, provider.verifyCalls)
	}
}

func TestEnrollCouponMakesCourseFree(t *testing.T) {
	provider := &countingProvider{}
	svc, st := newTestEnrollments(t, provider)
	ctx := context.Background()

	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 500, Status: model.CourseActive})
	if err := st.CreateCoupon(ctx, &model.Coupon{Code: "FULL", Kind: model.CouponPercent, Value: 100, IsActive: true}); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	enr, err := svc.Enroll(ctx, EnrollRequest{CourseID: course.ID, Email: "a@b.com", CouponCode: "FULL"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enr.Source != model.SourceCoupon {
		t.Errorf("Source: got %q, want %q", enr.Source, model.SourceCoupon)
	}
	if provider.orderCalls != 0 {
		t.Error("gateway was called for a coupon-zeroed enrollment")
	}

	coupon, err := st.GetCouponByCode(ctx, "FULL")
	if err != nil {
		t.Fatalf("GetCouponByCode: %v", err)
	}
	if coupon.UsedCount != 1 {
		t.Errorf("UsedCount: got %d, want 1", coupon.UsedCount)
	}
}

func TestEnrollPaidRequiresPaymentWithoutBypass(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{bypass: false})
	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 500, Status: model.CourseActive})

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: course.ID, Email: "a@b.com"})
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
}

func TestEnrollPaidWithBypass(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{bypass: true})
	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 500, Status: model.CourseActive})

	enr, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: course.ID, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enr.Source != model.SourceDevBypass {
		t.Errorf("Source: got %q, want %q", enr.Source, model.SourceDevBypass)
	}
	if enr.AmountPaid != 0 {
		t.Errorf("AmountPaid: got %v, want 0 for bypass", enr.AmountPaid)
	}
}

func TestEnrollInactiveCourse(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{})
	course := mustCreateCourse(t, st, &model.Course{Title: "Draft", Price: 0, Status: model.CourseInactive})

	_, err := svc.Enroll(context.Background(), EnrollRequest{CourseID: course.ID, Email: "a@b.com"})
	if !errors.Is(err, ErrCourseUnavailable) {
		t.Fatalf("expected ErrCourseUnavailable, got %v", err)
	}
}

func TestEnrollDuplicate(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{})
	course := mustCreateCourse(t, st, &model.Course{Title: "Free", Price: 0, Status: model.CourseActive})
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, EnrollRequest{CourseID: course.ID, Email: "a@b.com"}); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	_, err := svc.Enroll(ctx, EnrollRequest{CourseID: course.ID, Email: "A@B.com"})
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestCreateOrderAndVerify(t *testing.T) {
	provider := &countingProvider{}
	svc, st := newTestEnrollments(t, provider)
	ctx := context.Background()

	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 1000, DiscountedPrice: 800, Status: model.CourseActive})
	if err := st.CreateCoupon(ctx, &model.Coupon{Code: "SAVE20", Kind: model.CouponPercent, Value: 20, IsActive: true}); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	order, err := svc.CreateOrder(ctx, course.ID, "buyer@example.com", "SAVE20")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Amount != 640 {
		t.Errorf("Amount: got %v, want 640", order.Amount)
	}
	if order.Currency != "INR" {
		t.Errorf("Currency: got %q, want INR", order.Currency)
	}
	if order.Status != model.OrderCreated {
		t.Errorf("Status: got %q, want %q", order.Status, model.OrderCreated)
	}

	enr, err := svc.VerifyPayment(ctx, VerifyRequest{
		OrderID:   order.ProviderOrderID,
		PaymentID: "pay_123",
		Signature: "sig",
		Name:      "Buyer",
	})
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if enr.Source != model.SourcePayment {
		t.Errorf("Source: got %q, want %q", enr.Source, model.SourcePayment)
	}
	if enr.AmountPaid != 640 {
		t.Errorf("AmountPaid: got %v, want 640", enr.AmountPaid)
	}
	if enr.Email != "buyer@example.com" {
		t.Errorf("Email: got %q", enr.Email)
	}
	if enr.PaymentID != "pay_123" {
		t.Errorf("PaymentID: got %q", enr.PaymentID)
	}

	stored, err := st.GetOrderByProviderID(ctx, order.ProviderOrderID)
	if err != nil {
		t.Fatalf("GetOrderByProviderID: %v", err)
	}
	if stored.Status != model.OrderPaid {
		t.Errorf("order status: got %q, want %q", stored.Status, model.OrderPaid)
	}

	coupon, err := st.GetCouponByCode(ctx, "SAVE20")
	if err != nil {
		t.Fatalf("GetCouponByCode: %v", err)
	}
	if coupon.UsedCount != 1 {
		t.Errorf("UsedCount: got %d, want 1", coupon.UsedCount)
	}
}

func TestVerifyBadSignatureLeavesOrderUntouched(t *testing.T) {
	provider := &countingProvider{failVerify: true}
	svc, st := newTestEnrollments(t, provider)
	ctx := context.Background()

	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 500, Status: model.CourseActive})
	order, err := svc.CreateOrder(ctx, course.ID, "buyer@example.com", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	_, err = svc.VerifyPayment(ctx, VerifyRequest{OrderID: order.ProviderOrderID, PaymentID: "pay_x", Signature: "forged"})
	if !errors.Is(err, payment.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}

	stored, err := st.GetOrderByProviderID(ctx, order.ProviderOrderID)
	if err != nil {
		t.Fatalf("GetOrderByProviderID: %v", err)
	}
	if stored.Status != model.OrderCreated {
		t.Errorf("order status changed on bad signature: %q", stored.Status)
	}

	enrollments, err := st.ListEnrollments(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	if len(enrollments) != 0 {
		t.Errorf("enrollment created despite bad signature")
	}
}

func TestCreateOrderRejectsZeroPrice(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{})
	course := mustCreateCourse(t, st, &model.Course{Title: "Free", Price: 0, Status: model.CourseActive})

	_, err := svc.CreateOrder(context.Background(), course.ID, "a@b.com", "")
	if !errors.Is(err, ErrNothingToPay) {
		t.Fatalf("expected ErrNothingToPay, got %v", err)
	}
}

func TestCreateOrderRejectsExistingEnrollment(t *testing.T) {
	svc, st := newTestEnrollments(t, &countingProvider{bypass: true})
	course := mustCreateCourse(t, st, &model.Course{Title: "Paid", Price: 500, Status: model.CourseActive})
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, EnrollRequest{CourseID: course.ID, Email: "a@b.com"}); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	_, err := svc.CreateOrder(ctx, course.ID, "a@b.com", "")
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}
