package models

// GORM models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Feedback types accepted from the dashboard.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsightFeedback is a user's reaction to a generated insight
type InsightFeedback struct {
	BaseModel
	InsightText  string `json:"insight_text" gorm:"type:text;not null"`
	FeedbackType string `json:"feedback_type" gorm:"not null;check:feedback_type IN ('positive','negative')"`
	OEM          string `json:"oem" gorm:"column:oem"`
	Country      string `json:"country" gorm:"not null;index:idx_feedback_context,priority:1"`
	AnalysisType string `json:"analysis_type" gorm:"not null;default:'general';index:idx_feedback_context,priority:2"`
	UserSession  string `json:"user_session"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type InsightFeedbackRepository interface {
	Create(ctx context.Context, feedback *InsightFeedback) error
	GetRecentByContext(ctx context.Context, country, analysisType string, limit int) ([]InsightFeedback, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (InsightFeedback) TableName() string { return "ai_insights_feedback" }
func (SystemHealth) TableName() string    { return "system_health" }

// Model validation methods
func (f *InsightFeedback) Validate() error {
	if strings.TrimSpace(f.InsightText) == "" {
		return fmt.Errorf("insight text is required")
	}
	if strings.TrimSpace(f.Country) == "" {
		return fmt.Errorf("country is required")
	}
	validTypes := map[string]bool{
		FeedbackPositive: true,
		FeedbackNegative: true,
	}
	if !validTypes[f.FeedbackType] {
		return fmt.Errorf("invalid feedback type: %s", f.FeedbackType)
	}
	if f.AnalysisType == "" {
		f.AnalysisType = "general"
	}
	return nil
}

func (h *SystemHealth) Validate() error {
	validStatuses := map[string]bool{
		"healthy":   true,
		"degraded":  true,
		"unhealthy": true,
	}
	if !validStatuses[h.Status] {
		return fmt.Errorf("invalid health status: %s", h.Status)
	}
	return nil
}

// GORM hooks
func (f *InsightFeedback) BeforeCreate(tx *gorm.DB) error {
	return f.Validate()
}

func (h *SystemHealth) BeforeCreate(tx *gorm.DB) error {
	return h.Validate()
}
