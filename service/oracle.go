package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"loan-advisor/domain"
)

// Oracle is the trained model seen as a black box: one normalized row in,
// one probability of default out. Implementations must be deterministic for
// the scorer cache to be correct.
type Oracle interface {
	Probability(ctx context.Context, features domain.FeatureVector) (float64, error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, features domain.FeatureVector) (float64, error)

func (f OracleFunc) Probability(ctx context.Context, features domain.FeatureVector) (float64, error) {
	return f(ctx, features)
}

// OracleError reports a failed model call. It is never retried or replaced
// with a default probability.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("scoring oracle failed: %v", e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

// HTTPOracle calls a model-serving endpoint that accepts a split-oriented
// frame and answers with the positive-class probability.
type HTTPOracle struct {
	url        string
	httpClient *http.Client
}

type oracleRequest struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

type oracleResponse struct {
	Probability *float64 `json:"probability"`
}

func NewHTTPOracle(url string, timeout time.Duration) *HTTPOracle {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPOracle{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (o *HTTPOracle) Probability(ctx context.Context, features domain.FeatureVector) (float64, error) {
	jsonData, err := json.Marshal(oracleRequest{
		Columns: features.Columns(),
		Data:    [][]any{features.Values()},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(jsonData))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("model server error (status %d): %s", resp.StatusCode, string(body))
	}

	var out oracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode model response: %w", err)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("model response has no probability")
	}
	return *out.Probability, nil
}

// callOracle normalizes, scores and validates the model output.
func callOracle(ctx context.Context, oracle Oracle, n *Normalizer, payload domain.ApplicantPayload) (float64, error) {
	prob, err := oracle.Probability(ctx, n.Normalize(payload))
	if err != nil {
		return 0, &OracleError{Err: err}
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return 0, &OracleError{Err: fmt.Errorf("probability %v outside [0,1]", prob)}
	}
	return prob, nil
}

func roundProb(p float64) float64 {
	scale := math.Pow10(ProbabilityDecimals)
	return math.Round(p*scale) / scale
}
