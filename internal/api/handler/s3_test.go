package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/s3gate/internal/cloud"
	"github.com/edvin/s3gate/internal/core"
	"github.com/edvin/s3gate/internal/model"
)

type fakeBrowser struct {
	buckets    []model.Bucket
	page       *model.ObjectPage
	presignURL string

	lastListObjects cloud.ListObjectsInput
	lastPresign     cloud.PresignUploadInput
}

func (f *fakeBrowser) ListBuckets(context.Context, model.Credentials) ([]model.Bucket, error) {
	return f.buckets, nil
}

func (f *fakeBrowser) ListObjects(_ context.Context, _ model.Credentials, in cloud.ListObjectsInput) (*model.ObjectPage, error) {
	f.lastListObjects = in
	return f.page, nil
}

func (f *fakeBrowser) PresignUpload(_ context.Context, _ model.Credentials, in cloud.PresignUploadInput) (string, error) {
	f.lastPresign = in
	return f.presignURL, nil
}

func TestListObjects_MissingBucket(t *testing.T) {
	// The bucket check runs before connection resolution, so neither the
	// connection service nor the browser is touched.
	h := NewS3(nil, nil)

	w := httptest.NewRecorder()
	h.ListObjects(w, newRequest(t, http.MethodGet, "/api/v1/s3/objects", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bucket is required", decodeError(t, w).Error)
}

func TestListBuckets_NoConnectionIs404(t *testing.T) {
	h := NewS3(core.NewConnectionService(emptyDB{}, nil, nil), &fakeBrowser{})

	w := httptest.NewRecorder()
	h.ListBuckets(w, newRequest(t, http.MethodGet, "/api/v1/s3/buckets", ""))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresignUpload_InvalidBody(t *testing.T) {
	h := NewS3(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing bucket", body: `{"key":"a.txt"}`},
		{name: "missing key", body: `{"bucket":"alpha"}`},
		{name: "expires_in too large", body: `{"bucket":"alpha","key":"a.txt","expires_in":99999}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.PresignUpload(w, newRequest(t, http.MethodPost, "/api/v1/s3/presign-upload", tc.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPresignUpload_TTL(t *testing.T) {
	tests := []struct {
		name string
		body string
		want time.Duration
	}{
		{name: "explicit", body: `{"bucket":"alpha","key":"a.txt","expires_in":600}`, want: 10 * time.Minute},
		{name: "default", body: `{"bucket":"alpha","key":"a.txt"}`, want: 15 * time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			browser := &fakeBrowser{presignURL: "https://alpha.s3.amazonaws.com/a.txt?X-Amz-Expires=600"}
			h := NewS3(verifiedConnectionService(t), browser)

			w := httptest.NewRecorder()
			h.PresignUpload(w, newRequest(t, http.MethodPost, "/api/v1/s3/presign-upload", tc.body))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, browser.lastPresign.TTL)

			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, browser.presignURL, body["url"])
			assert.EqualValues(t, tc.want.Seconds(), body["expires_in"])
		})
	}
}

func TestListObjects_PassesCursorThrough(t *testing.T) {
	next := "opaque=="
	browser := &fakeBrowser{page: &model.ObjectPage{
		Objects:               []model.Object{{Key: "a.txt"}},
		IsTruncated:           true,
		NextContinuationToken: &next,
	}}
	h := NewS3(verifiedConnectionService(t), browser)

	w := httptest.NewRecorder()
	h.ListObjects(w, newRequest(t, http.MethodGet,
		"/api/v1/s3/objects?bucket=alpha&continuation_token=prev%3D%3D", ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prev==", browser.lastListObjects.ContinuationToken)

	var page model.ObjectPage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	require.NotNil(t, page.NextContinuationToken)
	assert.Equal(t, "opaque==", *page.NextContinuationToken)
}

func TestListBuckets_IncludesConnectionSummary(t *testing.T) {
	browser := &fakeBrowser{buckets: []model.Bucket{{Name: "alpha"}}}
	h := NewS3(verifiedConnectionService(t), browser)

	w := httptest.NewRecorder()
	h.ListBuckets(w, newRequest(t, http.MethodGet, "/api/v1/s3/buckets", ""))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Buckets    []model.Bucket `json:"buckets"`
		Connection struct {
			ID      string `json:"id"`
			RoleArn string `json:"role_arn"`
		} `json:"connection"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, []model.Bucket{{Name: "alpha"}}, body.Buckets)
	assert.NotEmpty(t, body.Connection.ID)
	assert.NotEmpty(t, body.Connection.RoleArn)
}
