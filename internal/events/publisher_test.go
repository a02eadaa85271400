package events

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublisher_InsightsGenerated(t *testing.T) {
	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe(SubjectInsightsGenerated, received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := Connect(ns.ClientURL(), quietLogger())
	require.NoError(t, err)
	defer pub.Close()
	require.NoError(t, pub.Ping(context.Background()))

	event := insights.GeneratedEvent{
		ID:           "evt-1",
		CacheKey:     "Tesla-US-{}",
		SubjectID:    "Tesla",
		Region:       "US",
		AnalysisType: insights.AnalysisGeneral,
		Model:        "gpt-4o-mini",
		GeneratedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, pub.InsightsGenerated(context.Background(), event))

	select {
	case msg := <-received:
		var got insights.GeneratedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.CacheKey, got.CacheKey)
		assert.True(t, event.GeneratedAt.Equal(got.GeneratedAt))
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublisher_CancelledContext(t *testing.T) {
	ns := runServer(t)

	pub, err := Connect(ns.ClientURL(), quietLogger())
	require.NoError(t, err)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.InsightsGenerated(ctx, insights.GeneratedEvent{ID: "x"}), context.Canceled)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", quietLogger())
	assert.Error(t, err)
}
