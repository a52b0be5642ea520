package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CrewClient implements Client against the crew pipeline service over HTTP.
type CrewClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCrewClient constructs a CrewClient.
func NewCrewClient(baseURL string, timeout time.Duration) (*CrewClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("CREW_SERVICE_URL is required for the crew analyzer")
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &CrewClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type crewRequest struct {
	PDFPath    string `json:"pdf_path"`
	InputField string `json:"input_field,omitempty"`
	UserQuery  string `json:"user_query,omitempty"`
}

type crewResponse struct {
	Summary string `json:"summary"`
	Log     string `json:"log"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Analyze posts the run inputs to the pipeline service and decodes its result.
func (c *CrewClient) Analyze(ctx context.Context, input Input) (Output, error) {
	payload, err := json.Marshal(crewRequest{
		PDFPath:    input.DocumentPath,
		InputField: input.Keyword,
		UserQuery:  input.Query,
	})
	if err != nil {
		return Output{}, fmt.Errorf("encode crew request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return Output{}, fmt.Errorf("build crew request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("crew request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Output{}, fmt.Errorf("read crew response: %w", err)
	}

	var decoded crewResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Output{}, fmt.Errorf("decode crew response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := decoded.Detail
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Output{Log: decoded.Log}, fmt.Errorf("crew pipeline failed (status %d): %s", resp.StatusCode, msg)
	}

	if strings.TrimSpace(decoded.Summary) == "" {
		return Output{Log: decoded.Log}, fmt.Errorf("crew pipeline returned an empty summary")
	}

	return Output{Summary: decoded.Summary, Log: decoded.Log}, nil
}

var _ Client = (*CrewClient)(nil)
