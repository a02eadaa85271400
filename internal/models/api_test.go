package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightsRequest_Payload(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"context wins", `{"context":{"a":1},"dashboardMetrics":{"b":2}}`, `{"a":1}`},
		{"null context falls through", `{"context":null,"dashboardMetrics":{"b":2}}`, `{"b":2}`},
		{"null analysis context falls through", `{"analysisContext": null ,"dashboardMetrics":{"b":2}}`, `{"b":2}`},
		{"analysis context", `{"analysisContext":{"c":3}}`, `{"c":3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req InsightsRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.JSONEq(t, tt.want, string(req.Payload()))
		})
	}
}

func TestInsightsRequest_PayloadAllNull(t *testing.T) {
	var req InsightsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"context":null,"dashboardMetrics":null}`), &req))
	assert.Nil(t, req.Payload())
}

func TestInsightsRequest_SubjectAndLocation(t *testing.T) {
	req := InsightsRequest{SubjectID: "BMW", Region: "Germany"}
	assert.Equal(t, "BMW", req.Subject())
	assert.Equal(t, "Germany", req.Location())

	req.OEM, req.Country = "Tesla", "US"
	assert.Equal(t, "Tesla", req.Subject())
	assert.Equal(t, "US", req.Location())
}
