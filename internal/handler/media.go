package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/distributor-orders/internal/media"
)

// UploadSigner issues signed direct-upload credentials for the image host.
type UploadSigner interface {
	Sign() (media.UploadSignature, error)
}

// MediaHandler serves the image upload signature.
type MediaHandler struct {
	Signer UploadSigner
}

// NewMediaHandler returns a handler backed by s.
func NewMediaHandler(s UploadSigner) *MediaHandler {
	return &MediaHandler{Signer: s}
}

// Signature returns a short-lived upload signature.
func (h *MediaHandler) Signature(c echo.Context) error {
	sig, err := h.Signer.Sign()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sig)
}
