package insights

import (
	"encoding/json"
	"time"
)

// Result sources reported back to callers.
const (
	SourceCache       = "cache"
	SourceSharedCache = "shared-cache"
	SourceAI          = "ai"
)

// InsightRequest is one "produce insights for (subject, region, context)" call.
// An empty SubjectID means an aggregate market overview.
type InsightRequest struct {
	SubjectID      string
	Region         string
	Context        json.RawMessage
	MarketOverview bool
}

// Aggregate reports whether the request spans all OEMs.
func (r InsightRequest) Aggregate() bool {
	return r.MarketOverview || r.SubjectID == ""
}

// Insights is the payload produced by the generator and held in the cache.
type Insights struct {
	Summary         string    `json:"summary"`
	KeyFindings     []string  `json:"keyFindings"`
	Recommendations []string  `json:"recommendations"`
	Model           string    `json:"model,omitempty"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

// FeedbackRecord is a stored user reaction to a previously shown insight.
type FeedbackRecord struct {
	InsightText  string    `json:"insightText"`
	FeedbackType string    `json:"feedbackType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FeedbackContext is the filter key for feedback lookups.
type FeedbackContext struct {
	SubjectID    string `json:"subjectId"`
	Region       string `json:"region"`
	AnalysisType string `json:"analysisType"`
}

// Result is what the service hands back for a single request.
type Result struct {
	Insights         Insights `json:"insights"`
	Source           string   `json:"source"`
	CacheKey         string   `json:"cacheKey"`
	FeedbackCount    int      `json:"feedbackCount"`
	FeedbackDegraded bool     `json:"feedbackDegraded"`
}

// GeneratedEvent is published after a fresh set of insights has been computed.
type GeneratedEvent struct {
	ID           string    `json:"id"`
	CacheKey     string    `json:"cacheKey"`
	SubjectID    string    `json:"subjectId,omitempty"`
	Region       string    `json:"region"`
	AnalysisType string    `json:"analysisType"`
	Model        string    `json:"model,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt"`
}
