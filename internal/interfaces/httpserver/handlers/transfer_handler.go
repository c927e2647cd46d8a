package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/domain/transfer"
	"github.com/codedrop/relay/internal/interfaces/httpserver/requests"
	"github.com/codedrop/relay/internal/interfaces/httpserver/responses"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// MsgInvalidBody is reported when a JSON body cannot be decoded.
const MsgInvalidBody = "Request body is not valid JSON"

const errUUIDInvalidBody = "c41d7e2a-0b6f-4e59-a3c8-6f1e2d9b5a01"

// TransferService is the upload/resolve surface the handler depends on.
type TransferService interface {
	Upload(ctx context.Context, in transfer.UploadInput) (*transfer.UploadResult, error)
	Resolve(ctx context.Context, code string) (*transfer.Link, error)
}

// TransferHandler exposes upload and download endpoints.
type TransferHandler struct {
	service TransferService
	maxBody int64
	log     zerolog.Logger
}

func NewTransferHandler(cfg *config.Config, service TransferService, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		maxBody: cfg.MaxRequestBytes,
		log:     log.With().Str("component", "transfer-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload a file
// @Description  Stores a base64 encoded file (max 10 MB) for 24 hours and returns an 8 character share code.
// @Tags         transfer
// @Accept       json
// @Produce      json
// @Param        request  body      requests.UploadRequest  true  "File payload"
// @Success      200      {object}  responses.UploadResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      500      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/upload [post]
func (h *TransferHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}

	var req requests.UploadRequest
	if err := bindJSON(c, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			platformerrors.WriteError(c, transfer.TooLargeError(ctx), transfer.MsgUploadFailed, h.log)
			return
		}
		platformerrors.WriteError(c, invalidBody(ctx, err), MsgInvalidBody, h.log)
		return
	}

	result, err := h.service.Upload(ctx, req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, transfer.MsgUploadFailed, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.BuildUploadResponse(result))
}

// Download godoc
// @Summary      Resolve a share code
// @Description  Returns a signed download link valid for up to one hour. The code is case-insensitive.
// @Tags         transfer
// @Produce      json
// @Param        code  query     string  true  "Share code"
// @Success      200   {object}  responses.DownloadResponse
// @Failure      400   {object}  platformerrors.HTTPErrorResponse
// @Failure      404   {object}  platformerrors.HTTPErrorResponse
// @Failure      410   {object}  platformerrors.HTTPErrorResponse
// @Failure      500   {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/download [get]
func (h *TransferHandler) Download(c *gin.Context) {
	link, err := h.service.Resolve(c.Request.Context(), c.Query("code"))
	if err != nil {
		platformerrors.WriteError(c, err, transfer.MsgResolveFailed, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.BuildDownloadResponse(link))
}

// bindJSON decodes the body into obj. A missing body decodes as an empty
// object so field validation reports the actual problem.
func bindJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func invalidBody(ctx context.Context, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, MsgInvalidBody, err, errUUIDInvalidBody)
}
