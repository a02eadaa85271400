package seeder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// FeedbackFixture is one entry of a seed file.
type FeedbackFixture struct {
	Insight      string `yaml:"insight"`
	Type         string `yaml:"type"`
	OEM          string `yaml:"oem"`
	Country      string `yaml:"country"`
	AnalysisType string `yaml:"analysisType"`
}

type fixtureFile struct {
	Feedback []FeedbackFixture `yaml:"feedback"`
}

// Seeder loads curated feedback so a fresh install has examples to learn from.
type Seeder struct {
	repo      models.InsightFeedbackRepository
	processor *ContentProcessor
	logger    *logrus.Logger
}

func NewSeeder(repo models.InsightFeedbackRepository, logger *logrus.Logger) *Seeder {
	return &Seeder{
		repo:      repo,
		processor: NewContentProcessor(),
		logger:    logger,
	}
}

// Parse decodes a seed file into validated records. Duplicate entries are dropped.
func (s *Seeder) Parse(r io.Reader) ([]models.InsightFeedback, error) {
	var file fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}

	records := make([]models.InsightFeedback, 0, len(file.Feedback))
	for i, fx := range file.Feedback {
		record := models.InsightFeedback{
			InsightText:  s.processor.CleanContent(fx.Insight),
			FeedbackType: strings.ToLower(strings.TrimSpace(fx.Type)),
			OEM:          strings.TrimSpace(fx.OEM),
			Country:      strings.TrimSpace(fx.Country),
			AnalysisType: strings.TrimSpace(fx.AnalysisType),
			UserSession:  "seed",
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("feedback entry %d: %w", i+1, err)
		}
		if s.processor.CountWords(record.InsightText) < 3 {
			return nil, fmt.Errorf("feedback entry %d: insight text is too short", i+1)
		}
		records = append(records, record)
	}

	return removeDuplicates(records, func(f models.InsightFeedback) string {
		return strings.Join([]string{f.Country, f.AnalysisType, f.FeedbackType, strings.ToLower(f.InsightText)}, "|")
	}), nil
}

// Seed stores records and returns how many were written.
func (s *Seeder) Seed(ctx context.Context, records []models.InsightFeedback) (int, error) {
	written := 0
	for i := range records {
		if err := s.repo.Create(ctx, &records[i]); err != nil {
			return written, fmt.Errorf("failed to store feedback %q: %w", records[i].InsightText, err)
		}
		written++
		s.logger.WithFields(logrus.Fields{
			"country":       records[i].Country,
			"analysis_type": records[i].AnalysisType,
			"feedback_type": records[i].FeedbackType,
		}).Debug("Seeded feedback")
	}
	return written, nil
}
