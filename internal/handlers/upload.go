package handlers

import (
	"context"
	"encoding/json"

	"github.com/flyasher/fiora/internal/auth"
	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/observability"
	"github.com/flyasher/fiora/internal/transport"
)

// UploadHandler issues the credentials for out-of-band media uploads.
type UploadHandler struct {
	tokens    *auth.TokenManager
	urlPrefix string
}

// NewUploadHandler constructs an UploadHandler.
func NewUploadHandler(tokens *auth.TokenManager, urlPrefix string) *UploadHandler {
	return &UploadHandler{tokens: tokens, urlPrefix: urlPrefix}
}

// UploadToken returns a short-lived token for the blob backend together with
// the public URL prefix under which uploaded objects become reachable.
func (h *UploadHandler) UploadToken(ctx context.Context, conn *transport.Conn, data json.RawMessage) (any, error) {
	observability.IncWSEvent("uploadToken")

	token, err := h.tokens.IssueUploadToken(conn.UserID())
	if err != nil {
		return nil, err
	}
	return models.UploadTokenResponse{Token: token, URLPrefix: h.urlPrefix}, nil
}
