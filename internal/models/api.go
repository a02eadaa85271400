package models

import (
	"bytes"
	"encoding/json"
)

// InsightsRequest accepts both the dashboard's field names (oem, country,
// dashboardMetrics) and the generic ones (subjectId, region, context).
type InsightsRequest struct {
	OEM              string          `json:"oem"`
	SubjectID        string          `json:"subjectId"`
	Country          string          `json:"country"`
	Region           string          `json:"region"`
	Context          json.RawMessage `json:"context"`
	DashboardMetrics json.RawMessage `json:"dashboardMetrics"`
	AnalysisContext  json.RawMessage `json:"analysisContext"`
	IsMarketOverview bool            `json:"isMarketOverview"`
}

// Subject returns the OEM the request is about; empty means market overview.
func (r InsightsRequest) Subject() string {
	if r.OEM != "" {
		return r.OEM
	}
	return r.SubjectID
}

func (r InsightsRequest) Location() string {
	if r.Country != "" {
		return r.Country
	}
	return r.Region
}

// Payload returns the first context field the caller supplied. An explicit
// null counts as not supplied.
func (r InsightsRequest) Payload() json.RawMessage {
	for _, raw := range []json.RawMessage{r.Context, r.AnalysisContext, r.DashboardMetrics} {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			return raw
		}
	}
	return nil
}

type FeedbackRequest struct {
	InsightText  string `json:"insightText" binding:"required"`
	FeedbackType string `json:"feedbackType" binding:"required"`
	OEM          string `json:"oem"`
	Country      string `json:"country" binding:"required"`
	AnalysisType string `json:"analysisType"`
}
