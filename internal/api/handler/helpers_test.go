package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	mw "github.com/edvin/s3gate/internal/api/middleware"
	"github.com/edvin/s3gate/internal/api/response"
	"github.com/edvin/s3gate/internal/core"
	"github.com/edvin/s3gate/internal/model"
)

const testUserID = "11111111-1111-1111-1111-111111111111"

// newRequest builds an authenticated JSON request.
func newRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(mw.WithIdentity(r.Context(), &mw.Identity{UserID: testUserID}))
}

// withURLParam attaches a chi route parameter the way the router would.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// emptyDB is a core.DB whose every lookup comes back empty.
type emptyDB struct{}

func (emptyDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (emptyDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (emptyDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return noRowsRow{}
}

type noRowsRow struct{}

func (noRowsRow) Scan(...any) error { return pgx.ErrNoRows }

var _ core.DB = emptyDB{}

// verifiedDB answers every lookup with the same verified connection.
type verifiedDB struct {
	emptyDB
}

func (verifiedDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return verifiedRow{}
}

type verifiedRow struct{}

func (verifiedRow) Scan(dest ...any) error {
	roleArn := "arn:aws:iam::123456789012:role/Demo"
	*dest[0].(*string) = "22222222-2222-2222-2222-222222222222"
	*dest[1].(*string) = testUserID
	*dest[2].(*string) = "ext-fixed"
	*dest[3].(**string) = &roleArn
	*dest[4].(*string) = "prod"
	*dest[5].(*time.Time) = time.Now().UTC()
	*dest[6].(*time.Time) = time.Now().UTC()
	return nil
}

// staticAssumer hands out fixed temporary credentials.
type staticAssumer struct{}

func (staticAssumer) AssumeRole(context.Context, string, string) (model.Credentials, error) {
	return model.Credentials{AccessKeyID: "ASIAEXAMPLE"}, nil
}

func verifiedConnectionService(t *testing.T) *core.ConnectionService {
	t.Helper()
	return core.NewConnectionService(verifiedDB{}, staticAssumer{}, nil)
}
