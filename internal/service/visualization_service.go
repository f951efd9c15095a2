package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"insight-server/internal/metabase"
	"insight-server/internal/model"
)

// CardPublisher saves a generated SQL question with an external
// visualization tool and returns where to find it.
type CardPublisher interface {
	Enabled() bool
	CreateCard(ctx context.Context, name string, sqlQuery string, display string) (metabase.Card, error)
}

// VisualizationService proxies natural-language chart requests to the n8n
// workflow (LLM analysis, SQL generation, data shaping) and optionally
// publishes the resulting SQL as a Metabase card. When the workflow is
// unreachable it falls back to a deterministic mock result so the endpoint
// stays usable in development.
type VisualizationService struct {
	webhookURL string
	publisher  CardPublisher
	httpc      *http.Client
}

func NewVisualizationService(webhookURL string, publisher CardPublisher) *VisualizationService {
	return &VisualizationService{
		webhookURL: webhookURL,
		publisher:  publisher,
		httpc:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *VisualizationService) Generate(ctx context.Context, req model.VisualizationRequest) (model.VisualizationResult, error) {
	result, err := s.callWebhook(ctx, req)
	if err != nil {
		slog.Warn("visualization workflow unavailable, serving mock result", "error", err)
		result = mockVisualization(req)
	}

	if result.SQLQuery != "" && s.publisher != nil && s.publisher.Enabled() {
		name := fmt.Sprintf("AI Generated Visualization - %d", time.Now().UnixMilli())
		card, cardErr := s.publisher.CreateCard(ctx, name, result.SQLQuery, metabaseDisplay(result.ChartType))
		if cardErr != nil {
			slog.Warn("metabase card creation failed", "error", cardErr)
		} else {
			result.MetabaseQuestionURL = card.QuestionURL
			result.MetabaseEmbedURL = card.EmbedURL
		}
	}

	return result, nil
}

func (s *VisualizationService) callWebhook(ctx context.Context, req model.VisualizationRequest) (model.VisualizationResult, error) {
	if s.webhookURL == "" {
		return model.VisualizationResult{}, fmt.Errorf("webhook URL is not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"question":            req.NaturalLanguageQuery,
		"databaseDescription": req.DatabaseDescription,
	})
	if err != nil {
		return model.VisualizationResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return model.VisualizationResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(httpReq)
	if err != nil {
		return model.VisualizationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.VisualizationResult{}, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	var parsed struct {
		SQLQuery  string           `json:"sqlQuery"`
		ChartType string           `json:"chartType"`
		XAxis     string           `json:"xAxis"`
		YAxis     string           `json:"yAxis"`
		MockData  []map[string]any `json:"mockData"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.VisualizationResult{}, fmt.Errorf("decode webhook response: %w", err)
	}

	data := parsed.MockData
	if data == nil {
		data = []map[string]any{}
	}

	return model.VisualizationResult{
		SQLQuery:  parsed.SQLQuery,
		ChartType: parsed.ChartType,
		XAxis:     parsed.XAxis,
		YAxis:     parsed.YAxis,
		Data:      data,
	}, nil
}

// mockVisualization is the offline fallback: keyword heuristics over the
// question pick a chart shape and canned data.
func mockVisualization(req model.VisualizationRequest) model.VisualizationResult {
	query := strings.ToLower(req.NaturalLanguageQuery)

	chartType := "bar"
	switch {
	case containsAny(query, "trend", "over time", "evolution", "monthly"):
		chartType = "line"
	case containsAny(query, "share", "percentage", "proportion", "breakdown"):
		chartType = "pie"
	}

	sqlQuery := "SELECT category, SUM(amount) AS total FROM transactions GROUP BY category"
	xAxis, yAxis := "category", "count"
	switch {
	case strings.Contains(query, "absence") && strings.Contains(query, "department"):
		sqlQuery = "SELECT department, COUNT(*) AS absence_count FROM absences GROUP BY department"
		xAxis, yAxis = "department", "absence_count"
	case strings.Contains(query, "user") && strings.Contains(query, "role"):
		sqlQuery = "SELECT role, COUNT(*) AS user_count FROM users GROUP BY role"
		xAxis, yAxis = "role", "user_count"
	}

	return model.VisualizationResult{
		SQLQuery:  sqlQuery,
		ChartType: chartType,
		XAxis:     xAxis,
		YAxis:     yAxis,
		Data:      mockDataFor(chartType),
	}
}

func mockDataFor(chartType string) []map[string]any {
	switch chartType {
	case "pie":
		return []map[string]any{
			{"x": "Active", "y": 60},
			{"x": "Inactive", "y": 25},
			{"x": "Pending", "y": 15},
		}
	case "line":
		return []map[string]any{
			{"x": "Jan", "y": 100},
			{"x": "Feb", "y": 120},
			{"x": "Mar", "y": 110},
			{"x": "Apr", "y": 140},
			{"x": "May", "y": 130},
		}
	default:
		return []map[string]any{
			{"x": "IT", "y": 25},
			{"x": "HR", "y": 15},
			{"x": "Finance", "y": 20},
			{"x": "Marketing", "y": 18},
		}
	}
}

func metabaseDisplay(chartType string) string {
	switch strings.ToLower(chartType) {
	case "bar", "line", "pie", "table":
		return strings.ToLower(chartType)
	default:
		return "bar"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
