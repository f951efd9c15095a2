package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insight-server/internal/metabase"
	"insight-server/internal/model"
)

type fakePublisher struct {
	enabled bool
	card    metabase.Card
	err     error
	calls   int
	lastSQL string
}

func (p *fakePublisher) Enabled() bool { return p.enabled }

func (p *fakePublisher) CreateCard(_ context.Context, _ string, sqlQuery string, _ string) (metabase.Card, error) {
	p.calls++
	p.lastSQL = sqlQuery
	return p.card, p.err
}

func TestVisualizationService_WebhookResult(t *testing.T) {
	var received map[string]string
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sqlQuery":  "SELECT role, COUNT(*) FROM users GROUP BY role",
			"chartType": "bar",
			"xAxis":     "role",
			"yAxis":     "count",
			"mockData":  []map[string]any{{"x": "USER", "y": 4}},
		})
	}))
	t.Cleanup(webhook.Close)

	svc := NewVisualizationService(webhook.URL, nil)

	result, err := svc.Generate(context.Background(), model.VisualizationRequest{
		NaturalLanguageQuery: "how many users per role",
		DatabaseDescription:  "users(id, role)",
	})
	require.NoError(t, err)

	assert.Equal(t, "how many users per role", received["question"])
	assert.Equal(t, "users(id, role)", received["databaseDescription"])
	assert.Equal(t, "SELECT role, COUNT(*) FROM users GROUP BY role", result.SQLQuery)
	assert.Equal(t, "bar", result.ChartType)
	assert.Len(t, result.Data, 1)
}

func TestVisualizationService_FallsBackToMock(t *testing.T) {
	t.Run("no webhook configured", func(t *testing.T) {
		svc := NewVisualizationService("", nil)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "monthly sales trend",
		})
		require.NoError(t, err)
		assert.Equal(t, "line", result.ChartType)
		assert.NotEmpty(t, result.SQLQuery)
		assert.NotEmpty(t, result.Data)
	})

	t.Run("webhook errors", func(t *testing.T) {
		webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(webhook.Close)

		svc := NewVisualizationService(webhook.URL, nil)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "breakdown of users by status",
		})
		require.NoError(t, err)
		assert.Equal(t, "pie", result.ChartType)
		assert.NotEmpty(t, result.Data)
	})

	t.Run("domain heuristics pick the query", func(t *testing.T) {
		svc := NewVisualizationService("", nil)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "users per role",
		})
		require.NoError(t, err)
		assert.Contains(t, result.SQLQuery, "GROUP BY role")
		assert.Equal(t, "role", result.XAxis)
	})
}

func TestVisualizationService_PublishesCard(t *testing.T) {
	t.Run("card URLs attached on success", func(t *testing.T) {
		publisher := &fakePublisher{
			enabled: true,
			card:    metabase.Card{QuestionURL: "http://mb/question/7", EmbedURL: "http://mb/embed/question/public-7-1.json"},
		}
		svc := NewVisualizationService("", publisher)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "users per role",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, publisher.calls)
		assert.Equal(t, result.SQLQuery, publisher.lastSQL)
		assert.Equal(t, "http://mb/question/7", result.MetabaseQuestionURL)
		assert.Equal(t, "http://mb/embed/question/public-7-1.json", result.MetabaseEmbedURL)
	})

	t.Run("publisher disabled", func(t *testing.T) {
		publisher := &fakePublisher{enabled: false}
		svc := NewVisualizationService("", publisher)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "users per role",
		})
		require.NoError(t, err)
		assert.Zero(t, publisher.calls)
		assert.Empty(t, result.MetabaseQuestionURL)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		publisher := &fakePublisher{enabled: true, err: assert.AnError}
		svc := NewVisualizationService("", publisher)

		result, err := svc.Generate(context.Background(), model.VisualizationRequest{
			NaturalLanguageQuery: "users per role",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, publisher.calls)
		assert.Empty(t, result.MetabaseQuestionURL)
	})
}
