package openapi

import (
	"encoding/json"
	"testing"
)

func TestBuildSpecCoversAPISurface(t *testing.T) {
	doc := BuildSpec()

	paths := []string{
		"/api/v1/admin-auth/login",
		"/api/v1/admin-auth/setup",
		"/api/v1/admin-auth/verify",
		"/api/v1/admin-auth/logout",
		"/api/v1/courses",
		"/api/v1/courses/{courseID}",
		"/api/v1/coupons/validate",
		"/api/v1/enrollments",
		"/api/v1/payments/create-order",
		"/api/v1/payments/verify",
		"/api/v1/admin/courses",
		"/api/v1/admin/courses/{courseID}",
		"/api/v1/admin/courses/{courseID}/details",
		"/api/v1/admin/coupons",
		"/api/v1/admin/enrollments",
	}
	for _, p := range paths {
		if doc.Paths.Value(p) == nil {
			t.Errorf("missing path %s", p)
		}
	}

	for _, schema := range []string{"ErrorResponse", "Admin", "Course", "CourseDetails", "Coupon", "Enrollment"} {
		if _, ok := doc.Components.Schemas[schema]; !ok {
			t.Errorf("missing component schema %s", schema)
		}
	}
}

func TestBuildSpecMarshals(t *testing.T) {
	doc := BuildSpec()

	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded["openapi"] != "3.1.0" {
		t.Errorf("openapi version: got %v", decoded["openapi"])
	}
}
