package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/colegio-api/internal/service"
	appErrors "github.com/noah-isme/colegio-api/pkg/errors"
	"github.com/noah-isme/colegio-api/pkg/response"
)

type exportOpener interface {
	Open(ctx context.Context, token string) (*service.ExportFile, error)
}

// ExportHandler serves stored exports behind signed links.
type ExportHandler struct {
	service exportOpener
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportOpener) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Download godoc
// @Summary Download a shared export
// @Description The signed token is the only credential.
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.service.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Body)
}
