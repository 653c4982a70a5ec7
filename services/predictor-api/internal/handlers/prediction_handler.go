package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"github.com/nimeshabuddhika/credit-risk-api/pkg/utils"
	"github.com/nimeshabuddhika/credit-risk-api/services/predictor-api/internal/services"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

var errTrailingData = errors.New("unexpected data after JSON object")

type PredictionHandler struct {
	logger  *zap.Logger
	service services.PredictionService
}

func NewPredictionHandler(logger *zap.Logger, svc services.PredictionService) *PredictionHandler {
	return &PredictionHandler{logger: logger, service: svc}
}

// RegisterRoutes registers prediction routes on the provided Gin group.
func (h *PredictionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/predict", h.Predict)
}

// Predict godoc
// @Summary      Predict credit default risk
// @Description  Validates the six model features and returns the predicted class with the probability of default.
// @Tags         prediction
// @Accept       json
// @Produce      json
// @Param        request  body      views.PredictionRequest  true  "Applicant features"
// @Success      200      {object}  views.PredictionResult
// @Failure      400      {object}  pkg.ErrorResponse  "Malformed JSON"
// @Failure      422      {object}  pkg.ErrorResponse  "Field constraint violations"
// @Failure      500      {object}  pkg.ErrorResponse  "Model invocation failed"
// @Router       /predict [post]
func (h *PredictionHandler) Predict(c *gin.Context) {
	traceID, err := utils.GetTraceID(c)
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}

	record, err := decodeRecord(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.writeError(c, traceID, pkg.NewAppError(pkg.ErrInvalidInputCode, "invalid request body", err))
		return
	}

	result, err := h.service.Predict(c.Request.Context(), traceID, record)
	if err != nil {
		h.writeError(c, traceID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PredictionHandler) writeError(c *gin.Context, traceID string, err error) {
	resp := pkg.ToErrorResponse(h.logger, traceID, err)
	c.JSON(resp.Status, resp)
}

// decodeRecord keeps numbers as json.Number so integer fields can be told apart from fractions.
func decodeRecord(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if record == nil {
		record = map[string]any{}
	}
	return record, nil
}
