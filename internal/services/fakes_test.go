package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-coach/internal/models"
)

type fakeAI struct {
	mu sync.Mutex

	replyFn func(history []models.ChatTurn) (string, error)
	titleFn func(history []models.ChatTurn) (string, error)
	scoreFn func(content map[string]interface{}) (*DocumentScore, error)

	replyCalls [][]models.ChatTurn
	titleCalls [][]models.ChatTurn
	scoreCalls []map[string]interface{}
}

func (f *fakeAI) GenerateReply(ctx context.Context, history []models.ChatTurn) (string, error) {
	f.mu.Lock()
	f.replyCalls = append(f.replyCalls, history)
	fn := f.replyFn
	f.mu.Unlock()
	if fn == nil {
		return "next question", nil
	}
	return fn(history)
}

func (f *fakeAI) GenerateTitle(ctx context.Context, history []models.ChatTurn) (string, error) {
	f.mu.Lock()
	f.titleCalls = append(f.titleCalls, history)
	fn := f.titleFn
	f.mu.Unlock()
	if fn == nil {
		return "Mock Interview", nil
	}
	return fn(history)
}

func (f *fakeAI) ScoreDocument(ctx context.Context, content map[string]interface{}) (*DocumentScore, error) {
	f.mu.Lock()
	f.scoreCalls = append(f.scoreCalls, content)
	fn := f.scoreFn
	f.mu.Unlock()
	if fn == nil {
		return &DocumentScore{Score: 80, Reason: "good resume"}, nil
	}
	return fn(content)
}

func (f *fakeAI) counts() (reply, title, score int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.replyCalls), len(f.titleCalls), len(f.scoreCalls)
}

// resultCollector records every finished scoring task.
type resultCollector struct {
	mu      sync.Mutex
	results []ScoringResult
}

func (c *resultCollector) observe(r ScoringResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *resultCollector) snapshot() []ScoringResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ScoringResult(nil), c.results...)
}

func (c *resultCollector) waitFor(t *testing.T, n int) []ScoringResult {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(c.snapshot()) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return c.snapshot()
}

// counterValue reads one series from a registry without the testutil package.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
