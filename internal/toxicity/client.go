package toxicity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCheckFailed indicates the toxicity service could not score the text
	ErrCheckFailed = errors.New("toxicity check failed")
)

// DefaultThreshold is the score a category must exceed to match.
const DefaultThreshold = 0.7

// Config configures the toxicity client.
type Config struct {
	// BaseURL of the TEI server hosting the classifier.
	BaseURL string
	// Threshold defaults to DefaultThreshold.
	Threshold float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0, 1]", ErrInvalidConfig, c.Threshold)
	}
	return nil
}

// Score is the model's probability for one category.
type Score struct {
	Category Category `json:"category"`
	Score    float64  `json:"score"`
}

// Verdict is the outcome of a toxicity check.
type Verdict struct {
	Toxic    bool     `json:"toxic"`
	Category Category `json:"category,omitempty"`
	Scores   []Score  `json:"scores"`
}

// Emoji returns the matched category's emoji, or "" for clean text.
func (v Verdict) Emoji() string {
	if !v.Toxic {
		return ""
	}
	return v.Category.Emoji()
}

// Client checks text against a TEI /predict endpoint.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{config: cfg, http: httpClient}, nil
}

// predictRequest asks TEI for sigmoid probabilities, its default, which
// Threshold is compared against.
type predictRequest struct {
	Inputs string `json:"inputs"`
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Check scores text. Scores are reported for every known category in check
// order; categories the model omits score 0. Labels outside the category
// set are ignored.
func (c *Client) Check(ctx context.Context, text string) (Verdict, error) {
	body, err := json.Marshal(predictRequest{Inputs: text})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Verdict{}, ctx.Err()
		}
		return Verdict{}, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Verdict{}, fmt.Errorf("%w: status %d: %s", ErrCheckFailed, resp.StatusCode, string(respBody))
	}

	var preds []prediction
	if err := json.NewDecoder(resp.Body).Decode(&preds); err != nil {
		return Verdict{}, fmt.Errorf("%w: decoding response: %v", ErrCheckFailed, err)
	}

	return c.verdict(preds), nil
}

func (c *Client) verdict(preds []prediction) Verdict {
	byLabel := make(map[Category]float64, len(preds))
	for _, p := range preds {
		byLabel[Category(p.Label)] = p.Score
	}

	v := Verdict{Scores: make([]Score, 0, len(categories))}
	for _, cat := range categories {
		score := byLabel[cat]
		v.Scores = append(v.Scores, Score{Category: cat, Score: score})
		if !v.Toxic && score > c.config.Threshold {
			v.Toxic = true
			v.Category = cat
		}
	}
	return v
}
