package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// BuildSpec generates the OpenAPI 3.1 document for the Coursedesk API.
// The surface is fixed, so the document is assembled statically rather
// than reflected from handlers.
func BuildSpec() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Coursedesk API",
			Description: "Course catalog, coupon, enrollment, and checkout API for the Coursedesk platform.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: "/"},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Paths = openapi3.NewPaths()

	registerSchemas(doc)
	addAuthPaths(doc)
	addCoursePaths(doc)
	addCouponPaths(doc)
	addEnrollmentPaths(doc)
	addPaymentPaths(doc)

	return doc
}

// ─── Component Schemas ──────────────────────────────────────────────────────

func registerSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success": boolSchema(),
				"message": stringSchema(""),
			},
		},
	}

	doc.Components.Schemas["Admin"] = objectSchema(openapi3.Schemas{
		"id":            intSchema("int64"),
		"username":      stringSchema(""),
		"email":         stringSchema("email"),
		"role":          stringSchema(""),
		"permissions":   stringArraySchema(),
		"is_active":     boolSchema(),
		"last_login_at": stringSchema("date-time"),
		"created_at":    stringSchema("date-time"),
	})

	doc.Components.Schemas["Course"] = objectSchema(openapi3.Schemas{
		"id":               intSchema("int64"),
		"title":            stringSchema(""),
		"description":      stringSchema(""),
		"category":         stringSchema(""),
		"level":            stringSchema(""),
		"thumbnail_url":    stringSchema("uri"),
		"price":            numberSchema(),
		"discounted_price": numberSchema(),
		"lesson_count":     intSchema("int32"),
		"status":           stringSchema(""),
		"created_at":       stringSchema("date-time"),
		"updated_at":       stringSchema("date-time"),
	})

	doc.Components.Schemas["CourseDetails"] = objectSchema(openapi3.Schemas{
		"id":                 intSchema("int64"),
		"course_id":          intSchema("int64"),
		"objectives":         stringSchema(""),
		"target_audience":    stringSchema(""),
		"prerequisites":      stringSchema(""),
		"structure":          stringSchema(""),
		"supplementary_info": stringSchema(""),
		"deliverables":       stringArraySchema(),
		"is_active":          boolSchema(),
	})

	doc.Components.Schemas["Coupon"] = objectSchema(openapi3.Schemas{
		"id":         intSchema("int64"),
		"code":       stringSchema(""),
		"kind":       stringSchema(""),
		"value":      numberSchema(),
		"min_amount": numberSchema(),
		"max_uses":   intSchema("int32"),
		"used_count": intSchema("int32"),
		"is_active":  boolSchema(),
		"expires_at": stringSchema("date-time"),
	})

	doc.Components.Schemas["Enrollment"] = objectSchema(openapi3.Schemas{
		"id":          intSchema("int64"),
		"course_id":   intSchema("int64"),
		"email":       stringSchema("email"),
		"name":        stringSchema(""),
		"coupon_code": stringSchema(""),
		"amount_paid": numberSchema(),
		"source":      stringSchema(""),
		"payment_id":  stringSchema(""),
		"created_at":  stringSchema("date-time"),
	})
}

// ─── Path Builders ──────────────────────────────────────────────────────────

func addAuthPaths(doc *openapi3.T) {
	sessionSchema := objectSchema(openapi3.Schemas{
		"success":    boolSchema(),
		"token":      stringSchema(""),
		"token_type": stringSchema(""),
		"expires_in": intSchema("int32"),
		"admin":      openapi3.NewSchemaRef("#/components/schemas/Admin", nil),
	})

	doc.Paths.Set("/api/v1/admin-auth/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin-auth"},
			Summary:     "Admin login",
			OperationID: "admin_login",
			RequestBody: jsonBody("Admin credentials", true, objectSchema(openapi3.Schemas{
				"email":    stringSchema("email"),
				"password": stringSchema("password"),
			})),
			Responses: newResponses("200", "Session token", sessionSchema),
		},
	})

	doc.Paths.Set("/api/v1/admin-auth/setup", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin-auth"},
			Summary:     "Bootstrap the first admin account",
			OperationID: "admin_setup",
			RequestBody: jsonBody("Initial superadmin account", true, objectSchema(openapi3.Schemas{
				"username": stringSchema(""),
				"email":    stringSchema("email"),
				"password": stringSchema("password"),
			})),
			Responses: newResponses("201", "Account created, session token issued", sessionSchema),
		},
	})

	doc.Paths.Set("/api/v1/admin-auth/verify", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin-auth"},
			Summary:     "Verify the caller's session token",
			OperationID: "admin_verify",
			Security:    bearerSecurity(),
			Responses: newResponses("200", "Token is valid", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"admin":   openapi3.NewSchemaRef("#/components/schemas/Admin", nil),
			})),
		},
	})

	doc.Paths.Set("/api/v1/admin-auth/logout", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"admin-auth"},
			Summary:     "Admin logout",
			OperationID: "admin_logout",
			Responses: newResponses("200", "Logged out", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"message": stringSchema(""),
			})),
		},
	})
}

func addCoursePaths(doc *openapi3.T) {
	courseRef := openapi3.NewSchemaRef("#/components/schemas/Course", nil)
	detailsRef := openapi3.NewSchemaRef("#/components/schemas/CourseDetails", nil)

	listSchema := listResponseSchema(courseRef)
	singleSchema := objectSchema(openapi3.Schemas{
		"success": boolSchema(),
		"course":  courseRef,
		"details": detailsRef,
	})

	doc.Paths.Set("/api/v1/courses", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"courses"},
			Summary:     "List active courses",
			OperationID: "list_courses",
			Responses:   newResponses("200", "Active courses", listSchema),
		},
	})
	doc.Paths.Set("/api/v1/courses/{courseID}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"courses"},
			Summary:     "Get an active course with details",
			OperationID: "get_course",
			Parameters:  courseIDParam(),
			Responses:   newResponses("200", "Course with details", singleSchema),
		},
	})

	doc.Paths.Set("/api/v1/admin/courses", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "List all courses",
			OperationID: "admin_list_courses",
			Security:    bearerSecurity(),
			Responses:   newResponses("200", "All courses, inactive included", listSchema),
		},
		Post: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "Create a course",
			OperationID: "admin_create_course",
			Security:    bearerSecurity(),
			RequestBody: jsonBody("Course to create", true, courseRef),
			Responses: newResponses("201", "Created course", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"course":  courseRef,
			})),
		},
	})
	doc.Paths.Set("/api/v1/admin/courses/{courseID}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "Get a course regardless of status",
			OperationID: "admin_get_course",
			Security:    bearerSecurity(),
			Parameters:  courseIDParam(),
			Responses:   newResponses("200", "Course with details", singleSchema),
		},
		Put: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "Replace a course",
			Description: "Full-document replace. Zeroed numeric fields are applied, so a course can be made free.",
			OperationID: "admin_update_course",
			Security:    bearerSecurity(),
			Parameters:  courseIDParam(),
			RequestBody: jsonBody("Complete course draft", true, courseRef),
			Responses: newResponses("200", "Updated course", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"course":  courseRef,
			})),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "Delete a course and its details",
			OperationID: "admin_delete_course",
			Security:    bearerSecurity(),
			Parameters:  courseIDParam(),
			Responses: newResponses("200", "Deleted", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"message": stringSchema(""),
			})),
		},
	})
	doc.Paths.Set("/api/v1/admin/courses/{courseID}/details", &openapi3.PathItem{
		Put: &openapi3.Operation{
			Tags:        []string{"admin-courses"},
			Summary:     "Create or replace course details",
			OperationID: "admin_upsert_course_details",
			Security:    bearerSecurity(),
			Parameters:  courseIDParam(),
			RequestBody: jsonBody("Course details", true, detailsRef),
			Responses: newResponses("200", "Saved details", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"details": detailsRef,
			})),
		},
	})
}

func addCouponPaths(doc *openapi3.T) {
	couponRef := openapi3.NewSchemaRef("#/components/schemas/Coupon", nil)

	doc.Paths.Set("/api/v1/coupons/validate", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"coupons"},
			Summary:     "Validate a coupon against an amount",
			OperationID: "validate_coupon",
			RequestBody: jsonBody("Coupon code and the amount being charged", true, objectSchema(openapi3.Schemas{
				"code":   stringSchema(""),
				"amount": numberSchema(),
			})),
			Responses: newResponses("200", "Server-computed discount", objectSchema(openapi3.Schemas{
				"success":      boolSchema(),
				"code":         stringSchema(""),
				"discount":     numberSchema(),
				"final_amount": numberSchema(),
			})),
		},
	})

	doc.Paths.Set("/api/v1/admin/coupons", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin-coupons"},
			Summary:     "List coupons",
			OperationID: "admin_list_coupons",
			Security:    bearerSecurity(),
			Responses:   newResponses("200", "All coupons", listResponseSchema(couponRef)),
		},
		Post: &openapi3.Operation{
			Tags:        []string{"admin-coupons"},
			Summary:     "Create a coupon",
			OperationID: "admin_create_coupon",
			Security:    bearerSecurity(),
			RequestBody: jsonBody("Coupon to create", true, objectSchema(openapi3.Schemas{
				"code":       stringSchema(""),
				"kind":       stringSchema(""),
				"value":      numberSchema(),
				"min_amount": numberSchema(),
				"max_uses":   intSchema("int32"),
				"expires_at": stringSchema("date"),
			})),
			Responses: newResponses("201", "Created coupon", objectSchema(openapi3.Schemas{
				"success": boolSchema(),
				"coupon":  couponRef,
			})),
		},
	})
}

func addEnrollmentPaths(doc *openapi3.T) {
	enrollmentRef := openapi3.NewSchemaRef("#/components/schemas/Enrollment", nil)

	enrollmentResponse := objectSchema(openapi3.Schemas{
		"success":    boolSchema(),
		"enrollment": enrollmentRef,
	})

	doc.Paths.Set("/api/v1/enrollments", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"enrollments"},
			Summary:     "Enroll in a course directly",
			Description: "For free courses, coupon-zeroed prices, and the sandbox provider's development bypass. Paid courses on the live gateway use the payment handshake.",
			OperationID: "create_enrollment",
			RequestBody: jsonBody("Enrollment request", true, objectSchema(openapi3.Schemas{
				"course_id":   intSchema("int64"),
				"email":       stringSchema("email"),
				"name":        stringSchema(""),
				"coupon_code": stringSchema(""),
			})),
			Responses: newResponses("201", "Created enrollment", enrollmentResponse),
		},
	})

	doc.Paths.Set("/api/v1/admin/enrollments", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"admin-enrollments"},
			Summary:     "List enrollments",
			OperationID: "admin_list_enrollments",
			Security:    bearerSecurity(),
			Parameters: openapi3.Parameters{
				&openapi3.ParameterRef{
					Value: openapi3.NewQueryParameter("course_id").
						WithDescription("Restrict to one course.").
						WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}),
				},
			},
			Responses: newResponses("200", "Enrollments", listResponseSchema(enrollmentRef)),
		},
	})
}

func addPaymentPaths(doc *openapi3.T) {
	doc.Paths.Set("/api/v1/payments/create-order", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"payments"},
			Summary:     "Create a checkout order",
			OperationID: "create_payment_order",
			RequestBody: jsonBody("Order request", true, objectSchema(openapi3.Schemas{
				"course_id":   intSchema("int64"),
				"email":       stringSchema("email"),
				"coupon_code": stringSchema(""),
			})),
			Responses: newResponses("201", "Order registered with the gateway", objectSchema(openapi3.Schemas{
				"success":  boolSchema(),
				"order_id": stringSchema(""),
				"amount":   numberSchema(),
				"currency": stringSchema(""),
				"receipt":  stringSchema(""),
				"key_id":   stringSchema(""),
			})),
		},
	})

	doc.Paths.Set("/api/v1/payments/verify", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"payments"},
			Summary:     "Verify a completed payment",
			OperationID: "verify_payment",
			RequestBody: jsonBody("Gateway completion triple plus enrollee identity", true, objectSchema(openapi3.Schemas{
				"order_id":   stringSchema(""),
				"payment_id": stringSchema(""),
				"signature":  stringSchema(""),
				"email":      stringSchema("email"),
				"name":       stringSchema(""),
			})),
			Responses: newResponses("200", "Payment verified, enrollment created", objectSchema(openapi3.Schemas{
				"success":    boolSchema(),
				"enrollment": openapi3.NewSchemaRef("#/components/schemas/Enrollment", nil),
			})),
		},
	})
}

// ─── Schema Helpers ─────────────────────────────────────────────────────────

func objectSchema(props openapi3.Schemas) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func stringSchema(format string) *openapi3.SchemaRef {
	s := &openapi3.Schema{Type: &openapi3.Types{"string"}}
	if format != "" {
		s.Format = format
	}
	return &openapi3.SchemaRef{Value: s}
}

func intSchema(format string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: format}}
}

func numberSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}}
}

func boolSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
}

func stringArraySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
		},
	}
}

func listResponseSchema(itemRef *openapi3.SchemaRef) *openapi3.SchemaRef {
	return objectSchema(openapi3.Schemas{
		"success": boolSchema(),
		"resource": &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: itemRef,
			},
		},
		"meta": metaSchema(),
	})
}

func metaSchema() *openapi3.SchemaRef {
	return objectSchema(openapi3.Schemas{
		"count":  intSchema("int64"),
		"limit":  intSchema("int32"),
		"offset": intSchema("int32"),
	})
}

// ─── Operation Helpers ──────────────────────────────────────────────────────

func jsonBody(description string, required bool, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    required,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

func courseIDParam() openapi3.Parameters {
	p := openapi3.NewPathParameter("courseID").
		WithDescription("Course ID.").
		WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"})
	return openapi3.Parameters{&openapi3.ParameterRef{Value: p}}
}

func bearerSecurity() *openapi3.SecurityRequirements {
	reqs := openapi3.SecurityRequirements{{"bearerAuth": {}}}
	return &reqs
}

// newResponses builds a Responses map with the success response and the
// standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for _, e := range []struct {
		code string
		desc string
	}{
		{"400", "Bad request"},
		{"401", "Unauthorized"},
		{"404", "Not found"},
		{"409", "Conflict"},
		{"500", "Internal server error"},
	} {
		desc := e.desc
		responses.Set(e.code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}
