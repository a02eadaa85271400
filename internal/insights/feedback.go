package insights

import (
	"context"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/metrics"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultFeedbackLimit caps the number of records a lookup returns.
const DefaultFeedbackLimit = 50

// FeedbackResult separates "no feedback exists" from "lookup failed".
// Records is never nil.
type FeedbackResult struct {
	Records  []FeedbackRecord `json:"records"`
	Degraded bool             `json:"degraded"`
}

// FeedbackRetriever loads recent feedback for a region and analysis type.
// Feedback only enriches generation, so failures never propagate.
type FeedbackRetriever struct {
	repo   models.InsightFeedbackRepository
	limit  int
	logger *logrus.Logger
}

func NewFeedbackRetriever(repo models.InsightFeedbackRepository, limit int, logger *logrus.Logger) *FeedbackRetriever {
	if limit <= 0 || limit > DefaultFeedbackLimit {
		limit = DefaultFeedbackLimit
	}
	return &FeedbackRetriever{
		repo:   repo,
		limit:  limit,
		logger: logger,
	}
}

// Fetch returns the most recent matching records, newest first.
func (r *FeedbackRetriever) Fetch(ctx context.Context, fc FeedbackContext) FeedbackResult {
	if r == nil || r.repo == nil {
		metrics.FeedbackLookups.WithLabelValues("degraded").Inc()
		return FeedbackResult{Records: []FeedbackRecord{}, Degraded: true}
	}

	rows, err := r.repo.GetRecentByContext(ctx, fc.Region, fc.AnalysisType, r.limit)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"country":       fc.Region,
			"analysis_type": fc.AnalysisType,
		}).Warn("Feedback lookup failed, continuing without feedback")
		metrics.FeedbackLookups.WithLabelValues("degraded").Inc()
		return FeedbackResult{Records: []FeedbackRecord{}, Degraded: true}
	}

	if len(rows) > r.limit {
		rows = rows[:r.limit]
	}

	records := make([]FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, FeedbackRecord{
			InsightText:  row.InsightText,
			FeedbackType: row.FeedbackType,
			CreatedAt:    row.CreatedAt,
		})
	}

	outcome := "ok"
	if len(records) == 0 {
		outcome = "empty"
	}
	metrics.FeedbackLookups.WithLabelValues(outcome).Inc()

	r.logger.WithFields(logrus.Fields{
		"country":       fc.Region,
		"analysis_type": fc.AnalysisType,
		"records":       len(records),
	}).Debug("Feedback retrieved")

	return FeedbackResult{Records: records}
}
