package model

import "time"

// Bucket is a single S3 bucket as seen through an assumed role.
type Bucket struct {
	Name         string     `json:"name"`
	CreationDate *time.Time `json:"creation_date,omitempty"`
}

// Object is a single S3 object summary.
type Object struct {
	Key          string     `json:"key"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	ETag         *string    `json:"etag,omitempty"`
}

// ObjectPage is one page of a bucket listing. NextContinuationToken is the
// provider's opaque cursor, passed through unmodified.
type ObjectPage struct {
	Objects               []Object `json:"objects"`
	IsTruncated           bool     `json:"is_truncated"`
	NextContinuationToken *string  `json:"next_continuation_token,omitempty"`
}
