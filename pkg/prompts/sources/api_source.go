package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APISource — загрузка промптов из HTTP API.
//
// Поддерживает Bearer token авторизацию.
type APISource struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewAPISource создаёт источник промптов из HTTP API.
//
// API контракт:
//
//	GET /prompts/{promptID}
//	Authorization: Bearer {token}
//
//	Response 200: PromptData в JSON
func NewAPISource(endpoint string, token string) *APISource {
	return &APISource{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Load загружает промпт из HTTP API.
func (s *APISource) Load(ctx context.Context, promptID string) (*PromptData, error) {
	reqURL := fmt.Sprintf("%s/prompts/%s", s.endpoint, url.PathEscape(promptID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: '%s' in API", ErrNotFound, promptID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(body))
	}

	var file PromptData
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	return &file, nil
}

// SetClient устанавливает кастомный HTTP клиент (для тестирования).
func (s *APISource) SetClient(client *http.Client) {
	s.client = client
}
