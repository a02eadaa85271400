package seeder

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	created []models.InsightFeedback
	failOn  int
}

func (m *memoryRepo) Create(ctx context.Context, feedback *models.InsightFeedback) error {
	if m.failOn > 0 && len(m.created)+1 == m.failOn {
		return errors.New("insert failed")
	}
	m.created = append(m.created, *feedback)
	return nil
}

func (m *memoryRepo) GetRecentByContext(ctx context.Context, country, analysisType string, limit int) ([]models.InsightFeedback, error) {
	return nil, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCleanContent(t *testing.T) {
	cp := NewContentProcessor()

	tests := []struct {
		in   string
		want string
	}{
		{"  Tesla leads   in\n\tOTA updates ", "Tesla leads in OTA updates"},
		{"- **BMW** offers <b>Level 2+</b> on 8 models", "BMW offers Level 2+ on 8 models"},
		{"1. `Hyundai` trails on parking assist", "Hyundai trails on parking assist"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cp.CleanContent(tt.in))
	}
}

func TestCountWords(t *testing.T) {
	cp := NewContentProcessor()
	assert.Equal(t, 0, cp.CountWords(""))
	assert.Equal(t, 5, cp.CountWords("Tesla leads in OTA, a lot"))
}

const seedYAML = `
feedback:
  - insight: "- Tesla leads OTA feature coverage in the US"
    type: Positive
    oem: Tesla
    country: US
    analysisType: landscape-analysis
  - insight: "Tesla leads OTA  feature coverage in the US"
    type: positive
    country: US
    analysisType: landscape-analysis
  - insight: "Generic statement with no data"
    type: negative
    country: Germany
`

func TestParse(t *testing.T) {
	s := NewSeeder(&memoryRepo{}, quietLogger())

	records, err := s.Parse(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Tesla leads OTA feature coverage in the US", records[0].InsightText)
	assert.Equal(t, models.FeedbackPositive, records[0].FeedbackType)
	assert.Equal(t, "general", records[1].AnalysisType)
	assert.Equal(t, "seed", records[1].UserSession)
}

func TestParse_Rejects(t *testing.T) {
	s := NewSeeder(&memoryRepo{}, quietLogger())

	_, err := s.Parse(strings.NewReader("feedback:\n  - insight: fine insight text here\n    type: meh\n    country: US\n"))
	assert.ErrorContains(t, err, "entry 1")

	_, err = s.Parse(strings.NewReader("feedback:\n  - insight: ok\n    type: positive\n    country: US\n"))
	assert.ErrorContains(t, err, "too short")

	_, err = s.Parse(strings.NewReader("feedback:\n  - insight: fine insight text here\n    rating: 5\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	s := NewSeeder(&memoryRepo{}, quietLogger())

	records, err := s.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSeed(t *testing.T) {
	repo := &memoryRepo{failOn: 2}
	s := NewSeeder(repo, quietLogger())

	records, err := s.Parse(strings.NewReader(seedYAML))
	require.NoError(t, err)

	written, err := s.Seed(context.Background(), records)
	assert.Error(t, err)
	assert.Equal(t, 1, written)
	assert.Len(t, repo.created, 1)
}
