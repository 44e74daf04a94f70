package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foxseedlab/kikitori/internal/translation"
)

const maxErrorBodyBytes = 512

type LibreTranslateClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewLibreTranslateClient(baseURL, apiKey string) *LibreTranslateClient {
	return &LibreTranslateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error"`
}

type languageResponse struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

// Translate issues one POST /translate. It does not retry.
func (c *LibreTranslateClient) Translate(ctx context.Context, req translation.Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}
	b, err := json.Marshal(translateRequest{
		Q:      req.Text,
		Source: req.SourceLang,
		Target: req.TargetLang,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	var out translateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &translation.ServiceResponseError{Reason: "body is not valid JSON", Err: err}
	}
	if out.TranslatedText == nil {
		if out.Error != "" {
			return "", &translation.ServiceResponseError{Reason: "missing translatedText", Err: errors.New(out.Error)}
		}
		return "", &translation.ServiceResponseError{Reason: "missing translatedText"}
	}
	return *out.TranslatedText, nil
}

// Languages lists the pairs the service advertises on GET /languages.
func (c *LibreTranslateClient) Languages(ctx context.Context) ([]translation.Language, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/languages", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	var raw []languageResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &translation.ServiceResponseError{Reason: "language list is not valid JSON", Err: err}
	}
	langs := make([]translation.Language, 0, len(raw))
	for _, l := range raw {
		langs = append(langs, translation.Language{Code: l.Code, Name: l.Name, Targets: l.Targets})
	}
	return langs, nil
}

func (c *LibreTranslateClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &translation.ServiceUnavailableError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &translation.ServiceUnavailableError{StatusCode: resp.StatusCode, Err: err}
	}
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return nil, &translation.ServiceUnavailableError{
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return body, nil
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes]
	}
	return s
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
