package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/codedrop/relay/internal/domain/feedback"
	"github.com/codedrop/relay/internal/interfaces/httpserver/requests"
	"github.com/codedrop/relay/internal/interfaces/httpserver/responses"
	"github.com/codedrop/relay/internal/utils/platformerrors"
)

// FeedbackHandler exposes the feedback endpoint.
type FeedbackHandler struct {
	service feedback.Service
	log     zerolog.Logger
}

func NewFeedbackHandler(service feedback.Service, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		log:     log.With().Str("component", "feedback-handler").Logger(),
	}
}

// Submit godoc
// @Summary      Submit feedback
// @Description  Stores a rating (1-5) and/or free text. At least one of them is required.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request  body      requests.FeedbackRequest  true  "Feedback"
// @Success      200      {object}  responses.FeedbackResponse
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      500      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req requests.FeedbackRequest
	if err := bindJSON(c, &req); err != nil {
		platformerrors.WriteError(c, invalidBody(ctx, err), MsgInvalidBody, h.log)
		return
	}

	fb, err := h.service.Submit(ctx, req.ToDomain())
	if err != nil {
		platformerrors.WriteError(c, err, feedback.MsgSubmitFailed, h.log)
		return
	}

	c.JSON(http.StatusOK, responses.BuildFeedbackResponse(fb))
}
