package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/s3gate/internal/api/middleware"
	"github.com/edvin/s3gate/internal/api/request"
	"github.com/edvin/s3gate/internal/api/response"
	"github.com/edvin/s3gate/internal/core"
)

type Connection struct {
	svc *core.ConnectionService
}

func NewConnection(svc *core.ConnectionService) *Connection {
	return &Connection{svc: svc}
}

// verifiedConnection is the public view of a verified connection.
type verifiedConnection struct {
	ID        string    `json:"id"`
	RoleArn   string    `json:"role_arn"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Bootstrap godoc
//
//	@Summary		Start connecting an AWS account
//	@Description	Returns the user's pending connection and its External ID, creating one if needed. Idempotent until a verify succeeds, so the External ID shown in the trust-policy instructions stays stable across page reloads.
//	@Tags			Connections
//	@Success		200	{object}	map[string]string
//	@Failure		401	{object}	response.ErrorResponse
//	@Router			/api/v1/connections/bootstrap [get]
func (h *Connection) Bootstrap(w http.ResponseWriter, r *http.Request) {
	identity := mw.GetIdentity(r.Context())

	conn, err := h.svc.Bootstrap(r.Context(), identity.UserID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"connection_id": conn.ID,
		"external_id":   conn.ExternalID,
	})
}

// Verify godoc
//
//	@Summary		Verify a role ARN
//	@Description	Assumes the submitted role with the stored External ID and probes S3 list permission. On success the pending connection is promoted in place. The External ID is never taken from the request body.
//	@Tags			Connections
//	@Param			body	body		request.VerifyConnection	true	"Role to verify"
//	@Success		200		{object}	handler.verifiedConnection
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/api/v1/connections/verify [post]
func (h *Connection) Verify(w http.ResponseWriter, r *http.Request) {
	identity := mw.GetIdentity(r.Context())

	var req request.VerifyConnection
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.svc.Verify(r.Context(), identity.UserID, core.VerifyParams{
		RoleArn:      req.RoleArn,
		ConnectionID: req.ConnectionID,
		Name:         req.Name,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, verifiedConnection{
		ID:        conn.ID,
		RoleArn:   *conn.RoleArn,
		Name:      conn.Name,
		CreatedAt: conn.CreatedAt,
	})
}

// List godoc
//
//	@Summary	List connections
//	@Tags		Connections
//	@Success	200	{object}	map[string]any
//	@Router		/api/v1/connections [get]
func (h *Connection) List(w http.ResponseWriter, r *http.Request) {
	identity := mw.GetIdentity(r.Context())

	conns, err := h.svc.ListByUser(r.Context(), identity.UserID)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"connections": conns})
}

// Delete godoc
//
//	@Summary	Delete a connection
//	@Tags		Connections
//	@Param		id	path	string	true	"Connection ID"
//	@Success	204
//	@Failure	404	{object}	response.ErrorResponse
//	@Router		/api/v1/connections/{id} [delete]
func (h *Connection) Delete(w http.ResponseWriter, r *http.Request) {
	identity := mw.GetIdentity(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		response.WriteError(w, http.StatusBadRequest, "missing connection ID")
		return
	}

	if _, err := h.svc.GetByIDAndUser(r.Context(), id, identity.UserID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, identity.UserID); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
