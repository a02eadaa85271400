package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
	}
}

func testGenerator(url string) *OpenAIGenerator {
	return NewOpenAIGenerator("test-key", url+"/v1", "", quietLogger()).
		WithRetry(RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req["model"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(`{"summary":"Tesla leads","keyFindings":["OTA on 100% of trims"],"recommendations":["Track BYD"]}`))
	}))
	defer server.Close()

	out, err := testGenerator(server.URL).Generate(context.Background(), GenerationInput{SubjectID: "Tesla", Region: "US"})
	require.NoError(t, err)
	assert.Equal(t, "Tesla leads", out.Summary)
	assert.Equal(t, []string{"OTA on 100% of trims"}, out.KeyFindings)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", out.Model)
	assert.False(t, out.GeneratedAt.IsZero())
}

func TestOpenAIGenerator_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(`{"summary":"ok","keyFindings":[],"recommendations":[]}`))
	}))
	defer server.Close()

	out, err := testGenerator(server.URL).Generate(context.Background(), GenerationInput{Region: "US"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Summary)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIGenerator_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), GenerationInput{Region: "US"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIGenerator_MalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionBody(`not json at all`))
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).Generate(context.Background(), GenerationInput{Region: "US"})
	assert.ErrorIs(t, err, errMalformedCompletion)
}

func TestBuildPrompt(t *testing.T) {
	ac, err := ParseContext(json.RawMessage(`{"analysisType":"landscape-analysis","ranking":{"availableFeatures":7}}`))
	require.NoError(t, err)

	prompt := BuildPrompt(GenerationInput{
		SubjectID: "Tesla",
		Region:    "US",
		Context:   ac,
		Feedback: []FeedbackRecord{
			{InsightText: "Quantified OTA adoption", FeedbackType: models.FeedbackPositive},
			{InsightText: "Generic market statement", FeedbackType: models.FeedbackNegative},
		},
	})

	assert.Contains(t, prompt, "Produce insights for Tesla in US.")
	assert.Contains(t, prompt, "Analysis type: landscape-analysis")
	assert.Contains(t, prompt, `"availableFeatures":7`)
	assert.Contains(t, prompt, "- Quantified OTA adoption")
	assert.Contains(t, prompt, "avoid similar statements:\n- Generic market statement")
}

func TestBuildPrompt_MarketOverview(t *testing.T) {
	prompt := BuildPrompt(GenerationInput{Region: ""})
	assert.Contains(t, prompt, "market overview across all OEMs in global")
	assert.Contains(t, prompt, "Analysis type: general")
}

func TestParseInsights_CodeFence(t *testing.T) {
	out, err := parseInsights("```json\n{\"summary\":\"fenced\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "fenced", out.Summary)
}
