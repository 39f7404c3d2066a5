package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coursedesk/coursedesk/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(DriverSQLite, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestAdminCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Role:         model.RoleSuperAdmin,
		Permissions:  model.AllPermissions(),
		IsActive:     true,
	}
	if err := st.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == 0 {
		t.Fatal("expected generated ID")
	}

	got, err := st.GetAdminByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Username: got %q, want %q", got.Username, "alice")
	}
	if !got.Permissions.Has(model.PermCourses) {
		t.Error("expected courses permission")
	}
	if got.LastLoginAt != nil {
		t.Error("expected nil LastLoginAt before first login")
	}

	if err := st.UpdateAdminLastLogin(ctx, admin.ID); err != nil {
		t.Fatalf("UpdateAdminLastLogin: %v", err)
	}
	got, err = st.GetAdmin(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetAdmin: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}

	has, err := st.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if !has {
		t.Error("expected HasAnyAdmin true")
	}
}

func TestAdminDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := &model.Admin{Username: "a", Email: "dup@example.com", PasswordHash: "h", Role: model.RoleAdmin, IsActive: true}
	if err := st.CreateAdmin(ctx, a); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	b := &model.Admin{Username: "b", Email: "dup@example.com", PasswordHash: "h", Role: model.RoleAdmin, IsActive: true}
	if err := st.CreateAdmin(ctx, b); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestAdminNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.GetAdmin(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.GetAdminByEmail(ctx, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCourseCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	course := &model.Course{
		Title:           "Intro to Trading",
		Description:     "From zero to charts",
		Category:        "finance",
		Level:           "beginner",
		Price:           1000,
		DiscountedPrice: 800,
		LessonCount:     12,
		Status:          model.CourseActive,
	}
	if err := st.CreateCourse(ctx, course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.ID == 0 {
		t.Fatal("expected generated ID")
	}

	inactive := &model.Course{Title: "Draft", Price: 500, Status: model.CourseInactive}
	if err := st.CreateCourse(ctx, inactive); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	all, err := st.ListCourses(ctx, false)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all courses: got %d, want 2", len(all))
	}

	active, err := st.ListCourses(ctx, true)
	if err != nil {
		t.Fatalf("ListCourses active: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("active courses: got %d, want 1", len(active))
	}

	course.Price = 1200
	course.DiscountedPrice = 0
	if err := st.UpdateCourse(ctx, course); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	got, err := st.GetCourse(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if got.Price != 1200 || got.DiscountedPrice != 0 {
		t.Errorf("after update: price %v discounted %v", got.Price, got.DiscountedPrice)
	}

	if err := st.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if _, err := st.GetCourse(ctx, course.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCourseDetailsUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	course := &model.Course{Title: "Course", Price: 100, Status: model.CourseActive}
	if err := st.CreateCourse(ctx, course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	details := &model.CourseDetails{
		CourseID:       course.ID,
		Objectives:     "Learn things",
		TargetAudience: "Beginners",
		Prerequisites:  "None",
		Structure:      "12 lessons",
		Deliverables:   model.StringList{"certificate", "workbook"},
		IsActive:       true,
	}
	if err := st.UpsertCourseDetails(ctx, details); err != nil {
		t.Fatalf("UpsertCourseDetails insert: %v", err)
	}

	details.Objectives = "Learn more things"
	if err := st.UpsertCourseDetails(ctx, details); err != nil {
		t.Fatalf("UpsertCourseDetails update: %v", err)
	}

	got, err := st.GetCourseDetails(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if got.Objectives != "Learn more things" {
		t.Errorf("Objectives: got %q", got.Objectives)
	}
	if len(got.Deliverables) != 2 || got.Deliverables[0] != "certificate" {
		t.Errorf("Deliverables: got %v", got.Deliverables)
	}

	// Deleting the course removes its details too.
	if err := st.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if _, err := st.GetCourseDetails(ctx, course.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for orphaned details, got %v", err)
	}
}

func TestCouponCaseInsensitiveLookup(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	coupon := &model.Coupon{Code: "launch20", Kind: model.CouponPercent, Value: 20, IsActive: true}
	if err := st.CreateCoupon(ctx, coupon); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if coupon.Code != "LAUNCH20" {
		t.Errorf("expected stored code to be uppercased, got %q", coupon.Code)
	}

	got, err := st.GetCouponByCode(ctx, "Launch20")
	if err != nil {
		t.Fatalf("GetCouponByCode: %v", err)
	}
	if got.Value != 20 {
		t.Errorf("Value: got %v, want 20", got.Value)
	}
}

func TestCouponIncrementUse(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	coupon := &model.Coupon{Code: "ONCE", Kind: model.CouponFlat, Value: 50, MaxUses: 1, IsActive: true}
	if err := st.CreateCoupon(ctx, coupon); err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	if err := st.IncrementCouponUse(ctx, "once"); err != nil {
		t.Fatalf("IncrementCouponUse: %v", err)
	}
	got, err := st.GetCouponByCode(ctx, "ONCE")
	if err != nil {
		t.Fatalf("GetCouponByCode: %v", err)
	}
	if got.UsedCount != 1 {
		t.Errorf("UsedCount: got %d, want 1", got.UsedCount)
	}
}

func TestEnrollmentUniquePerCourseAndEmail(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	course := &model.Course{Title: "Course", Price: 0, Status: model.CourseActive}
	if err := st.CreateCourse(ctx, course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	enr := &model.Enrollment{CourseID: course.ID, Email: "Buyer@Example.com", Source: model.SourceFree}
	if err := st.CreateEnrollment(ctx, enr); err != nil {
		t.Fatalf("CreateEnrollment: %v", err)
	}
	if enr.Email != "buyer@example.com" {
		t.Errorf("expected lowercased email, got %q", enr.Email)
	}

	dup := &model.Enrollment{CourseID: course.ID, Email: "buyer@example.com", Source: model.SourceFree}
	if err := st.CreateEnrollment(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Same email on a different course is fine.
	other := &model.Course{Title: "Other", Price: 0, Status: model.CourseActive}
	if err := st.CreateCourse(ctx, other); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	second := &model.Enrollment{CourseID: other.ID, Email: "buyer@example.com", Source: model.SourceFree}
	if err := st.CreateEnrollment(ctx, second); err != nil {
		t.Fatalf("CreateEnrollment other course: %v", err)
	}

	byCourse, err := st.ListEnrollments(ctx, course.ID)
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	if len(byCourse) != 1 {
		t.Errorf("by course: got %d, want 1", len(byCourse))
	}
	all, err := st.ListEnrollments(ctx, 0)
	if err != nil {
		t.Fatalf("ListEnrollments all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all: got %d, want 2", len(all))
	}
}

func TestOrderLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	order := &model.Order{
		ProviderOrderID: "order_abc123",
		CourseID:        1,
		Email:           "buyer@example.com",
		Amount:          640,
	}
	if err := st.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Currency != "INR" {
		t.Errorf("Currency default: got %q, want INR", order.Currency)
	}
	if order.Status != model.OrderCreated {
		t.Errorf("Status default: got %q, want %q", order.Status, model.OrderCreated)
	}

	if err := st.SetOrderStatus(ctx, "order_abc123", model.OrderPaid); err != nil {
		t.Fatalf("SetOrderStatus: %v", err)
	}
	got, err := st.GetOrderByProviderID(ctx, "order_abc123")
	if err != nil {
		t.Fatalf("GetOrderByProviderID: %v", err)
	}
	if got.Status != model.OrderPaid {
		t.Errorf("Status: got %q, want %q", got.Status, model.OrderPaid)
	}

	if _, err := st.GetOrderByProviderID(ctx, "order_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedImportIdempotentCoupons(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seed := &SeedFile{
		Courses: []SeedCourse{
			{
				Title: "Seeded Course",
				Price: 1000,
				Details: &SeedDetails{
					Objectives:     "Learn",
					TargetAudience: "Everyone",
					Prerequisites:  "None",
					Structure:      "Lessons",
				},
			},
		},
		Coupons: []SeedCoupon{
			{Code: "SEED10", Kind: model.CouponPercent, Value: 10, ExpiresAt: time.Now().AddDate(1, 0, 0).Format("2006-01-02")},
		},
	}

	courses, coupons, err := st.ImportSeed(ctx, seed)
	if err != nil {
		t.Fatalf("ImportSeed: %v", err)
	}
	if courses != 1 || coupons != 1 {
		t.Errorf("first import: %d courses, %d coupons", courses, coupons)
	}

	// Re-importing skips existing coupons instead of failing.
	seed.Courses = nil
	_, coupons, err = st.ImportSeed(ctx, seed)
	if err != nil {
		t.Fatalf("ImportSeed rerun: %v", err)
	}
	if coupons != 0 {
		t.Errorf("rerun: got %d coupons, want 0", coupons)
	}
}
