package repository

import (
	"context"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"gorm.io/gorm"
)

// InsightFeedbackRepositoryImpl implements InsightFeedbackRepository
type InsightFeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewInsightFeedbackRepository(db *gorm.DB) models.InsightFeedbackRepository {
	return &InsightFeedbackRepositoryImpl{db: db}
}

func (r *InsightFeedbackRepositoryImpl) Create(ctx context.Context, feedback *models.InsightFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *InsightFeedbackRepositoryImpl) GetRecentByContext(ctx context.Context, country, analysisType string, limit int) ([]models.InsightFeedback, error) {
	var feedback []models.InsightFeedback
	err := r.db.WithContext(ctx).
		Where("country = ? AND analysis_type = ?", country, analysisType).
		Order("created_at DESC").
		Limit(limit).
		Find(&feedback).Error
	return feedback, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	InsightFeedback models.InsightFeedbackRepository
	SystemHealth    models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		InsightFeedback: NewInsightFeedbackRepository(db),
		SystemHealth:    NewSystemHealthRepository(db),
	}
}
