package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/views"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{logger: logger}
}

func (b *BaseHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", b.GetHealth)
}

// GetHealth godoc
// @Summary      API health check
// @Description  Reports ready once the model artifact has been loaded. The route is only served after a successful startup.
// @Tags         health
// @Produce      json
// @Success      200  {object}  views.HealthResponse
// @Router       /health [get]
func (b *BaseHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, views.HealthResponse{
		Status:      "ok",
		ModelLoaded: true,
	})
}
