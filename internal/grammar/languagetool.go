package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/samber/lo"

	"github.com/example/englearn/pkg/models"
)

// DefaultURL is the public LanguageTool check endpoint
const DefaultURL = "https://api.languagetool.org/v2/check"

// LanguageTool is a client for the LanguageTool grammar checking API
type LanguageTool struct {
	apiURL        string
	language      string
	disabledRules string
	httpClient    *http.Client
}

// New creates a new LanguageTool client. An empty apiURL selects DefaultURL.
// Timeouts are taken from the context passed to Check.
func New(apiURL string, httpClient *http.Client) *LanguageTool {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &LanguageTool{
		apiURL:        apiURL,
		language:      "en-US",
		disabledRules: "WHITESPACE_RULE",
		httpClient:    httpClient,
	}
}

// CheckResponse represents a response from the check endpoint
type CheckResponse struct {
	Matches []Match `json:"matches"`
}

// Match is a single rule violation
type Match struct {
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Context struct {
		Text   string `json:"text"`
		Offset int    `json:"offset"`
		Length int    `json:"length"`
	} `json:"context"`
}

// Check sends text to LanguageTool and returns the flagged issues in the
// order the service reported them
func (c *LanguageTool) Check(ctx context.Context, text string) ([]models.GrammarIssue, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.language)
	form.Set("disabledRules", c.disabledRules)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("languagetool returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var response CheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return lo.Map(response.Matches, func(m Match, _ int) models.GrammarIssue {
		return models.GrammarIssue{
			Message: m.Message,
			Excerpt: excerpt(m.Context.Text, m.Context.Offset, m.Context.Length),
			Offset:  m.Offset,
			Length:  m.Length,
		}
	}), nil
}

// excerpt cuts the flagged span out of the context snippet. Offsets are
// UTF-16 code units, as reported by LanguageTool, clamped to the snippet.
func excerpt(text string, offset, length int) string {
	units := utf16.Encode([]rune(text))
	start := min(max(offset, 0), len(units))
	end := min(max(start+length, start), len(units))
	return string(utf16.Decode(units[start:end]))
}
