package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// maxFeedbackExamples bounds how many past insights of each polarity go into a prompt.
const maxFeedbackExamples = 5

var errMalformedCompletion = errors.New("malformed completion")

// GenerationInput is everything the generator sees for one request.
type GenerationInput struct {
	SubjectID      string
	Region         string
	MarketOverview bool
	Context        AnalysisContext
	Feedback       []FeedbackRecord
}

// Generator computes insights. Implementations own their timeout and retry policy.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) (Insights, error)
}

// OpenAIGenerator asks an OpenAI-compatible chat endpoint for JSON insights.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retry   RetryConfig
	logger  *logrus.Logger
}

func NewOpenAIGenerator(apiKey, baseURL, model string, logger *logrus.Logger) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: 60 * time.Second,
		retry:   DefaultRetryConfig(),
		logger:  logger,
	}
}

// WithRetry overrides the backoff policy.
func (g *OpenAIGenerator) WithRetry(config RetryConfig) *OpenAIGenerator {
	g.retry = config
	return g
}

// WithTimeout bounds a single Generate call, retries included.
func (g *OpenAIGenerator) WithTimeout(timeout time.Duration) *OpenAIGenerator {
	if timeout > 0 {
		g.timeout = timeout
	}
	return g
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) Generate(ctx context.Context, input GenerationInput) (Insights, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(input)},
		},
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	g.logger.WithFields(logrus.Fields{
		"model":    g.model,
		"oem":      input.SubjectID,
		"country":  input.Region,
		"feedback": len(input.Feedback),
	}).Debug("Requesting insights from model")

	var out Insights
	err := retryOperation(ctx, g.retry, g.logger, func() error {
		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no choices returned", errMalformedCompletion)
		}
		parsed, err := parseInsights(resp.Choices[0].Message.Content)
		if err != nil {
			return err
		}
		parsed.Model = resp.Model
		if parsed.Model == "" {
			parsed.Model = g.model
		}
		out = parsed
		return nil
	})
	if err != nil {
		return Insights{}, err
	}

	out.GeneratedAt = time.Now().UTC()
	return out, nil
}

// Ping verifies the endpoint is reachable with the configured credentials.
func (g *OpenAIGenerator) Ping(ctx context.Context) error {
	_, err := g.client.ListModels(ctx)
	return err
}

const systemPrompt = `You are an automotive market intelligence analyst covering ADAS and connected-vehicle features across OEMs. ` +
	`Respond with a JSON object of the form {"summary": string, "keyFindings": [string], "recommendations": [string]}. ` +
	`Be specific and quantitative, reference the supplied metrics, and keep each finding under 200 characters.`

// BuildPrompt renders the user prompt for a request.
func BuildPrompt(input GenerationInput) string {
	var b strings.Builder

	analysisType := AnalysisGeneral
	var raw json.RawMessage
	if input.Context != nil {
		if t := input.Context.AnalysisType(); t != "" {
			analysisType = t
		}
		raw = input.Context.Raw()
	}

	region := input.Region
	if region == "" {
		region = globalRegionKey
	}

	if input.MarketOverview || input.SubjectID == "" {
		fmt.Fprintf(&b, "Produce a market overview across all OEMs in %s.\n", region)
	} else {
		fmt.Fprintf(&b, "Produce insights for %s in %s.\n", input.SubjectID, region)
	}
	fmt.Fprintf(&b, "Analysis type: %s\n\n", analysisType)

	if len(raw) > 0 {
		b.WriteString("Dashboard metrics:\n")
		b.Write(raw)
		b.WriteString("\n\n")
	}

	var liked, disliked []string
	for _, fb := range input.Feedback {
		switch fb.FeedbackType {
		case models.FeedbackPositive:
			if len(liked) < maxFeedbackExamples {
				liked = append(liked, fb.InsightText)
			}
		case models.FeedbackNegative:
			if len(disliked) < maxFeedbackExamples {
				disliked = append(disliked, fb.InsightText)
			}
		}
	}

	if len(liked) > 0 {
		b.WriteString("Analysts found insights like these useful:\n")
		for _, text := range liked {
			fmt.Fprintf(&b, "- %s\n", text)
		}
		b.WriteString("\n")
	}
	if len(disliked) > 0 {
		b.WriteString("Analysts rejected insights like these, avoid similar statements:\n")
		for _, text := range disliked {
			fmt.Fprintf(&b, "- %s\n", text)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func parseInsights(content string) (Insights, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out Insights
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return Insights{}, fmt.Errorf("%w: %v", errMalformedCompletion, err)
	}
	if out.Summary == "" && len(out.KeyFindings) == 0 {
		return Insights{}, fmt.Errorf("%w: empty insights", errMalformedCompletion)
	}
	return out, nil
}
