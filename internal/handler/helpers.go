package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coursedesk/coursedesk/internal/model"
)

// writeJSON serializes v as JSON and writes it to the response with the
// given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the uniform {success:false, message} failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Response{Success: false, Message: message})
}

// readJSON decodes the request body as JSON into v. The body is closed
// after decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt64 extracts an int64 query parameter, returning defaultVal if
// the parameter is missing or cannot be parsed.
func queryInt64(r *http.Request, key string, defaultVal int64) int64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

// adminSummary serializes an admin for responses: the full record minus
// credential fields.
func adminSummary(admin *model.Admin) map[string]interface{} {
	m := map[string]interface{}{
		"id":          admin.ID,
		"username":    admin.Username,
		"email":       admin.Email,
		"role":        admin.Role,
		"permissions": admin.Permissions,
		"is_active":   admin.IsActive,
		"created_at":  admin.CreatedAt,
	}
	if admin.LastLoginAt != nil {
		m["last_login_at"] = admin.LastLoginAt
	}
	return m
}
