package model

// Response is the uniform success/failure envelope for endpoints that
// return a message rather than a resource.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse is the standard envelope for list endpoints.
type ListResponse struct {
	Success  bool          `json:"success"`
	Resource []interface{} `json:"resource"`
	Meta     *ResponseMeta `json:"meta,omitempty"`
}

// ResponseMeta carries pagination information for list responses.
type ResponseMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}
