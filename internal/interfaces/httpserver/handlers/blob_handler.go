package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/infrastructure/storage"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

const (
	errUUIDBlobToken = "c41d7e2a-0b6f-4e59-a3c8-6f1e2d9b5a02"
	errUUIDBlobOpen  = "c41d7e2a-0b6f-4e59-a3c8-6f1e2d9b5a03"
)

// BlobOpener validates a signed local link and opens its blob.
type BlobOpener interface {
	Open(ctx context.Context, token string) (*storage.BlobObject, error)
}

// BlobHandler serves signed links minted by the local blob store.
type BlobHandler struct {
	opener BlobOpener
	log    zerolog.Logger
}

func NewBlobHandler(opener BlobOpener, log zerolog.Logger) *BlobHandler {
	return &BlobHandler{
		opener: opener,
		log:    log.With().Str("component", "blob-handler").Logger(),
	}
}

// Serve godoc
// @Summary      Download a blob through a signed link
// @Description  Streams a locally stored file. Only available with the local storage backend.
// @Tags         transfer
// @Produce      octet-stream
// @Param        token  query     string  true  "Signed token"
// @Success      200
// @Failure      403    {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/blobs [get]
func (h *BlobHandler) Serve(c *gin.Context) {
	ctx := c.Request.Context()

	obj, err := h.opener.Open(ctx, c.Query("token"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidBlobToken) {
			platformerrors.WriteHTTPError(c, platformerrors.NewError(ctx, platformerrors.LayerHandler,
				platformerrors.ErrorTypeForbidden, transfer.MsgInvalidBlobLink, err, errUUIDBlobToken), h.log)
			return
		}
		platformerrors.WriteHTTPError(c, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal, transfer.MsgResolveFailed, err, errUUIDBlobOpen), h.log)
		return
	}
	defer obj.File.Close()

	c.Header("Content-Type", obj.ContentType)
	if obj.ContentDisposition != "" {
		c.Header("Content-Disposition", obj.ContentDisposition)
	}
	c.Header("Cache-Control", "private, no-store")
	http.ServeContent(c.Writer, c.Request, "", obj.ModTime, obj.File)
}
