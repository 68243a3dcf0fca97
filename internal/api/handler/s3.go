package handler

import (
	"context"
	"net/http"
	"time"

	mw "github.com/edvin/s3gate/internal/api/middleware"
	"github.com/edvin/s3gate/internal/api/request"
	"github.com/edvin/s3gate/internal/api/response"
	"github.com/edvin/s3gate/internal/cloud"
	"github.com/edvin/s3gate/internal/core"
	"github.com/edvin/s3gate/internal/model"
)

const (
	defaultPresignTTL = 15 * time.Minute
	maxPresignTTL     = time.Hour
)

// Browser is the resource-access surface the S3 handlers need. Implemented
// by cloud.ResourceClient; narrowed for test fakes.
type Browser interface {
	ListBuckets(ctx context.Context, creds model.Credentials) ([]model.Bucket, error)
	ListObjects(ctx context.Context, creds model.Credentials, in cloud.ListObjectsInput) (*model.ObjectPage, error)
	PresignUpload(ctx context.Context, creds model.Credentials, in cloud.PresignUploadInput) (string, error)
}

type S3 struct {
	connections *core.ConnectionService
	resources   Browser
}

func NewS3(connections *core.ConnectionService, resources Browser) *S3 {
	return &S3{connections: connections, resources: resources}
}

// connectionView is the connection summary attached to bucket listings.
type connectionView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RoleArn string `json:"role_arn"`
}

// resolve picks the verified connection for this request and performs a
// fresh role assumption. Credentials live only for the duration of the
// request.
func (h *S3) resolve(r *http.Request, connectionID string) (*model.Connection, model.Credentials, error) {
	identity := mw.GetIdentity(r.Context())

	conn, err := h.connections.ResolveVerified(r.Context(), identity.UserID, connectionID)
	if err != nil {
		return nil, model.Credentials{}, err
	}
	creds, err := h.connections.Credentials(r.Context(), conn)
	if err != nil {
		return nil, model.Credentials{}, err
	}
	return conn, creds, nil
}

// ListBuckets godoc
//
//	@Summary		List buckets
//	@Description	Lists the S3 buckets visible through the resolved connection's assumed role.
//	@Tags			S3
//	@Param			connection_id	query		string	false	"Connection ID (defaults to the most recent connection)"
//	@Success		200				{object}	map[string]any
//	@Failure		404				{object}	response.ErrorResponse
//	@Failure		409				{object}	response.ErrorResponse
//	@Router			/api/v1/s3/buckets [get]
func (h *S3) ListBuckets(w http.ResponseWriter, r *http.Request) {
	conn, creds, err := h.resolve(r, r.URL.Query().Get("connection_id"))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	buckets, err := h.resources.ListBuckets(r.Context(), creds)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"buckets": buckets,
		"connection": connectionView{
			ID:      conn.ID,
			Name:    conn.Name,
			RoleArn: *conn.RoleArn,
		},
	})
}

// ListObjects godoc
//
//	@Summary		List objects in a bucket
//	@Description	Returns one page of a bucket listing. The continuation token is the provider's opaque cursor, passed through unmodified.
//	@Tags			S3
//	@Param			bucket				query		string	true	"Bucket name"
//	@Param			prefix				query		string	false	"Key prefix"
//	@Param			max_keys			query		int		false	"Page size"	default(100)
//	@Param			continuation_token	query		string	false	"Cursor from the previous page"
//	@Param			connection_id		query		string	false	"Connection ID"
//	@Success		200					{object}	model.ObjectPage
//	@Failure		400					{object}	response.ErrorResponse
//	@Router			/api/v1/s3/objects [get]
func (h *S3) ListObjects(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListObjects(r)
	if params.Bucket == "" {
		response.WriteError(w, http.StatusBadRequest, "bucket is required")
		return
	}

	_, creds, err := h.resolve(r, params.ConnectionID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	page, err := h.resources.ListObjects(r.Context(), creds, cloud.ListObjectsInput{
		Bucket:            params.Bucket,
		Prefix:            params.Prefix,
		MaxKeys:           params.MaxKeys,
		ContinuationToken: params.ContinuationToken,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, page)
}

// PresignUpload godoc
//
//	@Summary		Mint a presigned upload URL
//	@Description	Returns a time-boxed URL authorizing a PUT of exactly the given key. The browser uploads directly to S3; object bytes never transit this server.
//	@Tags			S3
//	@Param			body	body		request.PresignUpload	true	"Upload target"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/api/v1/s3/presign-upload [post]
func (h *S3) PresignUpload(w http.ResponseWriter, r *http.Request) {
	var req request.PresignUpload
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ttl := defaultPresignTTL
	if req.ExpiresIn > 0 {
		ttl = time.Duration(req.ExpiresIn) * time.Second
	}
	if ttl > maxPresignTTL {
		ttl = maxPresignTTL
	}

	_, creds, err := h.resolve(r, req.ConnectionID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	url, err := h.resources.PresignUpload(r.Context(), creds, cloud.PresignUploadInput{
		Bucket:      req.Bucket,
		Key:         req.Key,
		ContentType: req.ContentType,
		TTL:         ttl,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"url":        url,
		"bucket":     req.Bucket,
		"key":        req.Key,
		"expires_in": int(ttl.Seconds()),
	})
}
