package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/codedrop/relay/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/upload", r.handlers.Transfer.Upload)
	group.GET("/download", r.handlers.Transfer.Download)
	group.POST("/feedback", r.handlers.Feedback.Submit)
	if r.handlers.Blob != nil {
		group.GET("/blobs", r.handlers.Blob.Serve)
	}
}

// RegisterLegacy attaches the unversioned paths older clients still call.
func (r *Routes) RegisterLegacy(router gin.IRouter) {
	router.POST("/upload", r.handlers.Transfer.Upload)
	router.GET("/download", r.handlers.Transfer.Download)
	router.POST("/feedback", r.handlers.Feedback.Submit)
}
