package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/metrics"
	"github.com/sirupsen/logrus"
)

// SharedStore is an optional cross-process tier behind the local cache.
type SharedStore interface {
	Load(ctx context.Context, key string) (Insights, bool, error)
	Save(ctx context.Context, key string, value Insights) error
}

// Notifier is told about freshly generated insights.
type Notifier interface {
	InsightsGenerated(ctx context.Context, event GeneratedEvent) error
}

type Option func(*Service)

func WithSharedStore(store SharedStore) Option {
	return func(s *Service) { s.shared = store }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service runs validation, cache lookup, feedback enrichment and generation.
type Service struct {
	cache     *Cache
	feedback  *FeedbackRetriever
	generator Generator
	shared    SharedStore
	notifier  Notifier
	logger    *logrus.Logger
}

func NewService(cache *Cache, feedback *FeedbackRetriever, generator Generator, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		cache:     cache,
		feedback:  feedback,
		generator: generator,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate returns cached insights when possible and computes them otherwise.
// Validation failures wrap ErrValidation, generator failures wrap ErrGeneration.
func (s *Service) Generate(ctx context.Context, req InsightRequest) (*Result, error) {
	ac, err := ValidateRequest(req)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"oem":     req.SubjectID,
			"country": req.Region,
		}).Warn("Rejected insight request")
		return nil, err
	}

	key := GenerateCacheKey(req.SubjectID, req.Region, canonicalMetrics(ac), req.Aggregate())
	log := s.logger.WithField("cache_key", key)

	if cached, ok := s.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		log.Debug("Insights served from cache")
		return &Result{Insights: cached, Source: SourceCache, CacheKey: key}, nil
	}

	if s.shared != nil {
		cached, ok, err := s.shared.Load(ctx, key)
		if err != nil {
			log.WithError(err).Warn("Shared insights cache lookup failed")
		} else if ok {
			metrics.CacheLookups.WithLabelValues("shared_hit").Inc()
			s.cache.Set(key, cached)
			log.Debug("Insights served from shared cache")
			return &Result{Insights: cached, Source: SourceSharedCache, CacheKey: key}, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	fc := DeriveFeedbackContext(ac, req.SubjectID, req.Region)
	feedback := s.feedback.Fetch(ctx, fc)

	start := time.Now()
	out, err := s.generator.Generate(ctx, GenerationInput{
		SubjectID:      req.SubjectID,
		Region:         req.Region,
		MarketOverview: req.Aggregate(),
		Context:        ac,
		Feedback:       feedback.Records,
	})
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Generations.WithLabelValues("error").Inc()
		log.WithError(err).Error("Insight generation failed")
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	metrics.Generations.WithLabelValues("success").Inc()

	s.cache.Set(key, out)

	if s.shared != nil {
		if err := s.shared.Save(ctx, key, out); err != nil {
			log.WithError(err).Warn("Failed to store insights in shared cache")
		}
	}

	if s.notifier != nil {
		event := GeneratedEvent{
			ID:           uuid.NewString(),
			CacheKey:     key,
			SubjectID:    req.SubjectID,
			Region:       req.Region,
			AnalysisType: fc.AnalysisType,
			Model:        out.Model,
			GeneratedAt:  out.GeneratedAt,
		}
		if err := s.notifier.InsightsGenerated(ctx, event); err != nil {
			log.WithError(err).Warn("Failed to publish insights event")
		}
	}

	log.WithFields(logrus.Fields{
		"analysis_type":     fc.AnalysisType,
		"feedback_count":    len(feedback.Records),
		"feedback_degraded": feedback.Degraded,
		"duration_ms":       time.Since(start).Milliseconds(),
	}).Info("Insights generated")

	return &Result{
		Insights:         out,
		Source:           SourceAI,
		CacheKey:         key,
		FeedbackCount:    len(feedback.Records),
		FeedbackDegraded: feedback.Degraded,
	}, nil
}

// Cache exposes the local cache for diagnostics.
func (s *Service) Cache() *Cache {
	return s.cache
}

// canonicalMetrics re-decodes the context so object keys serialize sorted.
func canonicalMetrics(ac AnalysisContext) interface{} {
	var v interface{}
	if err := json.Unmarshal(ac.Raw(), &v); err != nil {
		return string(ac.Raw())
	}
	return v
}
