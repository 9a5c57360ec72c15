package viewsets

import "encoding/json"

// Page is the envelope for paginated list responses.
//
// Wire format: {"count": 42, "page": 1, "page_size": 25, "results": [...]}
type Page struct {
	Count    int64 `json:"count"`
	PageNum  int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  any   `json:"results"`
}

// errorResponse is the internal envelope type for error responses.
// This wraps the error in an {"error": {...}} structure.
type errorResponse struct {
	Error *Error `json:"error"`
}

// encodeErrorResponse writes an error response to the ResponseWriter.
func encodeErrorResponse(w jsonWriter, err *Error) error {
	return json.NewEncoder(w).Encode(errorResponse{Error: err})
}

// jsonWriter is satisfied by http.ResponseWriter and allows testing.
type jsonWriter interface {
	Write([]byte) (int, error)
}
