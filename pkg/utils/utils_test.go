package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("nonsense").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("").GetLevel())
}

func TestSessionID(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)

	id := sessionIDAt("10.0.0.1|Mozilla", at)
	assert.True(t, ValidateSessionID(id))
	assert.Equal(t, id, sessionIDAt("10.0.0.1|Mozilla", at.Add(30*time.Minute)))
	assert.NotEqual(t, id, sessionIDAt("10.0.0.1|Mozilla", at.Add(2*time.Hour)))
	assert.NotEqual(t, id, sessionIDAt("10.0.0.2|Mozilla", at))

	assert.False(t, ValidateSessionID("short"))
	assert.False(t, ValidateSessionID("zzzzzzzzzzzzzzzz"))
}

func TestNewRequestID(t *testing.T) {
	_, err := uuid.Parse(NewRequestID())
	assert.NoError(t, err)
}

func TestResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")
	ErrorResponse(c, http.StatusBadGateway, "Insight generation failed", errors.New("upstream"))

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "upstream", body.Error)
	assert.Equal(t, "req-1", body.RequestID)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	FieldErrorResponse(c, http.StatusBadRequest, "country", errors.New("country is required"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "country", body.Field)
}
