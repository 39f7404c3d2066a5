package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/store"
)

// CourseHandler manages the course catalog: admin CRUD plus the public
// storefront views.
type CourseHandler struct {
	store *store.Store
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(st *store.Store) *CourseHandler {
	return &CourseHandler{store: st}
}

// ListPublic returns active courses for the storefront.
// GET /api/v1/courses
func (h *CourseHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// List returns all courses, inactive included.
// GET /api/v1/admin/courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *CourseHandler) list(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	courses, err := h.store.ListCourses(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list courses: "+err.Error())
		return
	}

	resources := make([]interface{}, 0, len(courses))
	for i := range courses {
		resources = append(resources, &courses[i])
	}

	writeJSON(w, http.StatusOK, model.ListResponse{
		Success:  true,
		Resource: resources,
		Meta:     &model.ResponseMeta{Count: len(resources)},
	})
}

// GetPublic returns a single active course with its details embedded.
// GET /api/v1/courses/{courseID}
func (h *CourseHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	if course.Status != model.CourseActive {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}
	h.writeCourseWithDetails(w, r, course)
}

// Get returns a single course regardless of status, with details.
// GET /api/v1/admin/courses/{courseID}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}
	h.writeCourseWithDetails(w, r, course)
}

func (h *CourseHandler) writeCourseWithDetails(w http.ResponseWriter, r *http.Request, course *model.Course) {
	resp := map[string]interface{}{
		"success": true,
		"course":  course,
	}
	details, err := h.store.GetCourseDetails(r.Context(), course.ID)
	if err == nil {
		resp["details"] = details
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load course details: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new course.
// POST /api/v1/admin/courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var course model.Course
	if err := readJSON(r, &course); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := validateCourse(&course); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.CreateCourse(r.Context(), &course); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create course: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"course":  &course,
	})
}

// Update replaces a course's editable fields with the submitted draft.
// PUT /api/v1/admin/courses/{courseID}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	var draft model.Course
	if err := readJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg := validateCourse(&draft); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// Full-document replace: the admin form submits the complete draft,
	// so zeroed numeric fields (a course made free) are intentional.
	draft.ID = existing.ID
	draft.CreatedAt = existing.CreatedAt
	if err := h.store.UpdateCourse(r.Context(), &draft); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update course: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"course":  &draft,
	})
}

// Delete removes a course and its details.
// DELETE /api/v1/admin/courses/{courseID}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteCourse(r.Context(), course.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete course: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Course deleted"})
}

// UpsertDetails creates or replaces the descriptive details of a course.
// PUT /api/v1/admin/courses/{courseID}/details
func (h *CourseHandler) UpsertDetails(w http.ResponseWriter, r *http.Request) {
	course, ok := h.courseFromPath(w, r)
	if !ok {
		return
	}

	var details model.CourseDetails
	if err := readJSON(r, &details); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if details.Objectives == "" || details.TargetAudience == "" ||
		details.Prerequisites == "" || details.Structure == "" {
		writeError(w, http.StatusBadRequest,
			"Objectives, target audience, prerequisites, and structure are required")
		return
	}

	details.CourseID = course.ID
	if err := h.store.UpsertCourseDetails(r.Context(), &details); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save course details: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"details": &details,
	})
}

func (h *CourseHandler) courseFromPath(w http.ResponseWriter, r *http.Request) (*model.Course, bool) {
	idStr := chi.URLParam(r, "courseID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid course ID: "+idStr)
		return nil, false
	}

	course, err := h.store.GetCourse(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Course not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get course: "+err.Error())
		return nil, false
	}
	return course, true
}

func validateCourse(course *model.Course) string {
	if course.Title == "" {
		return "Title is required"
	}
	if course.Price < 0 || course.DiscountedPrice < 0 {
		return "Prices cannot be negative"
	}
	if course.DiscountedPrice > 0 && course.DiscountedPrice >= course.Price {
		return "Discounted price must be below the base price"
	}
	if course.Status == "" {
		course.Status = model.CourseInactive
	}
	if course.Status != model.CourseActive && course.Status != model.CourseInactive {
		return "Status must be active or inactive"
	}
	return ""
}
