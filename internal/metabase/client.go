package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Client is a scoped handle on a Metabase session. The session token is the
// only cached state; it lives behind the mutex and is re-acquired when the
// API reports it expired. Nothing here leaks into the auth core.
type Client struct {
	baseURL    string
	username   string
	password   string
	databaseID int
	httpc      *http.Client

	mu           sync.Mutex
	sessionToken string
}

type Card struct {
	QuestionURL string
	EmbedURL    string
}

func NewClient(baseURL string, username string, password string, databaseID int) *Client {
	return &Client{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		databaseID: databaseID,
		httpc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the client is configured to talk to a real
// Metabase instance.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CreateCard saves a native-SQL question and returns its question and embed
// URLs. An expired session is re-authenticated once and the call retried.
func (c *Client) CreateCard(ctx context.Context, name string, sqlQuery string, display string) (Card, error) {
	token, err := c.session(ctx)
	if err != nil {
		return Card{}, err
	}

	cardID, err := c.postCard(ctx, token, name, sqlQuery, display)
	if err == errSessionExpired {
		c.invalidate(token)
		if token, err = c.session(ctx); err != nil {
			return Card{}, err
		}
		cardID, err = c.postCard(ctx, token, name, sqlQuery, display)
	}
	if err != nil {
		return Card{}, err
	}

	return Card{
		QuestionURL: fmt.Sprintf("%s/question/%d", c.baseURL, cardID),
		EmbedURL:    fmt.Sprintf("%s/embed/question/public-%d-%d.json", c.baseURL, cardID, time.Now().UnixMilli()),
	}, nil
}

var errSessionExpired = fmt.Errorf("metabase session expired")

func (c *Client) postCard(ctx context.Context, token string, name string, sqlQuery string, display string) (int, error) {
	payload := map[string]any{
		"name": name,
		"dataset_query": map[string]any{
			"type":     "native",
			"native":   map[string]any{"query": sqlQuery},
			"database": c.databaseID,
		},
		"display":                display,
		"visualization_settings": map[string]any{},
		"collection_id":          nil,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/card", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Metabase-Session", token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return 0, errSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("metabase card creation returned status %d", resp.StatusCode)
	}

	var parsed struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode metabase card response: %w", err)
	}
	return parsed.ID, nil
}

func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionToken != "" {
		return c.sessionToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metabase authentication returned status %d", resp.StatusCode)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode metabase session response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("metabase session response missing id")
	}

	c.sessionToken = parsed.ID
	return c.sessionToken, nil
}

// invalidate clears the cached token if it is still the one that failed, so
// a concurrent re-authentication is not thrown away.
func (c *Client) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionToken == token {
		c.sessionToken = ""
	}
}
