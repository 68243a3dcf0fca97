package request

import (
	"net/http"
	"strconv"
)

// PresignUpload requests a time-boxed upload URL. ExpiresIn is in seconds.
type PresignUpload struct {
	Bucket       string `json:"bucket" validate:"required"`
	Key          string `json:"key" validate:"required,max=1024"`
	ContentType  string `json:"content_type" validate:"omitempty,max=255"`
	ConnectionID string `json:"connection_id" validate:"omitempty,uuid"`
	ExpiresIn    int    `json:"expires_in" validate:"omitempty,min=1,max=3600"`
}

// ListObjectsParams are the query parameters of the object-listing endpoint.
type ListObjectsParams struct {
	Bucket            string
	Prefix            string
	MaxKeys           int32
	ContinuationToken string
	ConnectionID      string
}

// ParseListObjects extracts object-listing parameters from the query string.
// An unparsable max_keys falls back to the server default rather than
// erroring.
func ParseListObjects(r *http.Request) ListObjectsParams {
	q := r.URL.Query()
	p := ListObjectsParams{
		Bucket:            q.Get("bucket"),
		Prefix:            q.Get("prefix"),
		ContinuationToken: q.Get("continuation_token"),
		ConnectionID:      q.Get("connection_id"),
	}
	if v := q.Get("max_keys"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.MaxKeys = int32(n)
		}
	}
	return p
}
