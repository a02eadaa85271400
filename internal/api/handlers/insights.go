package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/seeder"
	"github.com/ns-adiraghavan/adas-compassiq/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// InsightGenerator is satisfied by *insights.Service.
type InsightGenerator interface {
	Generate(ctx context.Context, req insights.InsightRequest) (*insights.Result, error)
}

type InsightsHandler struct {
	service   InsightGenerator
	feedback  models.InsightFeedbackRepository
	retriever *insights.FeedbackRetriever
	processor *seeder.ContentProcessor
	timeout   time.Duration
	logger    *logrus.Logger
}

func NewInsightsHandler(
	service InsightGenerator,
	feedback models.InsightFeedbackRepository,
	retriever *insights.FeedbackRetriever,
	logger *logrus.Logger,
) *InsightsHandler {
	return &InsightsHandler{
		service:   service,
		feedback:  feedback,
		retriever: retriever,
		processor: seeder.NewContentProcessor(),
		timeout:   90 * time.Second,
		logger:    logger,
	}
}

// Register mounts the insight routes on a router group.
func (h *InsightsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/insights", h.HandleGenerate)
	rg.POST("/insights/feedback", h.HandleSubmitFeedback)
	rg.GET("/insights/feedback", h.HandleListFeedback)
}

// HandleGenerate returns insights for one dashboard view
func (h *InsightsHandler) HandleGenerate(c *gin.Context) {
	var req models.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.Generate(ctx, insights.InsightRequest{
		SubjectID:      strings.TrimSpace(req.Subject()),
		Region:         req.Location(),
		Context:        req.Payload(),
		MarketOverview: req.IsMarketOverview,
	})
	if err != nil {
		var verr *insights.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.FieldErrorResponse(c, http.StatusBadRequest, verr.Field, verr)
		case errors.Is(err, insights.ErrValidation):
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request", err)
		case errors.Is(err, insights.ErrGeneration):
			utils.ErrorResponse(c, http.StatusBadGateway, "Insight generation failed", err)
		default:
			h.logger.WithError(err).Error("Unexpected insights failure")
			utils.ErrorResponse(c, http.StatusInternalServerError, "Insight generation failed", err)
		}
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Insights generated", result)
}

// HandleSubmitFeedback records a thumbs up or down on a shown insight
func (h *InsightsHandler) HandleSubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	feedback := &models.InsightFeedback{
		InsightText:  h.processor.CleanContent(req.InsightText),
		FeedbackType: strings.ToLower(strings.TrimSpace(req.FeedbackType)),
		OEM:          strings.TrimSpace(req.OEM),
		Country:      strings.TrimSpace(req.Country),
		AnalysisType: strings.TrimSpace(req.AnalysisType),
		UserSession:  h.getUserSession(c),
	}
	if err := feedback.Validate(); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback", err)
		return
	}

	if err := h.feedback.Create(c.Request.Context(), feedback); err != nil {
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"oem":           feedback.OEM,
		"country":       feedback.Country,
		"analysis_type": feedback.AnalysisType,
		"feedback_type": feedback.FeedbackType,
		"user_session":  feedback.UserSession,
	}).Info("Feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", feedback)
}

// HandleListFeedback returns the feedback the generator would see for a context
func (h *InsightsHandler) HandleListFeedback(c *gin.Context) {
	country := strings.TrimSpace(c.Query("country"))
	if country == "" {
		utils.FieldErrorResponse(c, http.StatusBadRequest, "country", errors.New("query parameter 'country' is required"))
		return
	}

	result := h.retriever.Fetch(c.Request.Context(), insights.FeedbackContext{
		SubjectID:    c.Query("oem"),
		Region:       country,
		AnalysisType: c.DefaultQuery("analysisType", insights.AnalysisGeneral),
	})

	utils.SuccessResponse(c, http.StatusOK, "Feedback retrieved", result)
}

func (h *InsightsHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); utils.ValidateSessionID(session) {
		return session
	}

	// Basic fingerprinting from IP + User-Agent
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}
