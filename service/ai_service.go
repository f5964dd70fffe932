package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"loan-advisor/domain"
	"loan-advisor/llm"
)

// ErrRendererUnavailable is returned when no text provider is configured.
var ErrRendererUnavailable = errors.New("text renderer not available")

// RenderError wraps a failed text generation. The engine never replaces the
// missing text; callers choose their own fallback.
type RenderError struct {
	Kind string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

const (
	clientMessageSystem = `You are a lending specialist drafting a short message to an applicant.
Constraints:
- Professional, neutral, supportive tone.
- 2-3 specific, actionable suggestions.
- Do NOT mention probabilities, AI, risk scores, or internal thresholds.
- Keep it short.
- Signed: Compliance Officer`

	officerAdviceSystem = "You are a prudent, fair, concise credit risk advisor."

	clientMessageTokens = 400
	officerAdviceTokens = 400
)

var genericActions = []string{
	"Consider a smaller amount",
	"Shorten the term",
	"Pay down revolving balances",
}

type AIService struct {
	provider    llm.Provider
	timeout     time.Duration
	temperature float64
	logger      *zap.Logger
}

// NewAIService wraps provider. A nil provider makes every render fail with
// ErrRendererUnavailable.
func NewAIService(provider llm.Provider, timeout time.Duration, temperature float64, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{
		provider:    provider,
		timeout:     timeout,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *AIService) Enabled() bool {
	return s.provider != nil
}

// RenderClientMessage turns recommendation labels into applicant-facing
// copy. It never mentions probabilities.
func (s *AIService) RenderClientMessage(ctx context.Context, payload domain.ApplicantPayload, actions []string) (string, error) {
	if len(actions) == 0 {
		actions = genericActions
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Applicant name: %s\n\n", clientName(payload))
	b.WriteString("Use these concrete actions:\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	b.WriteString("\nWrite a brief message that:\n")
	b.WriteString("- Thanks the applicant\n")
	b.WriteString("- Lists the actions as bullets\n")
	b.WriteString("- Ends with an encouraging close")

	return s.generate(ctx, "client message", llm.Request{
		System:      clientMessageSystem,
		Input:       b.String(),
		MaxTokens:   clientMessageTokens,
		Temperature: s.temperature,
	})
}

// RenderOfficerAdvice asks for a recommendation on a manual-review case.
func (s *AIService) RenderOfficerAdvice(ctx context.Context, payload domain.ApplicantPayload, prob float64, th domain.Thresholds) (string, error) {
	thresholdsJSON, err := json.Marshal(th)
	if err != nil {
		return "", &RenderError{Kind: "officer advice", Err: err}
	}
	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", &RenderError{Kind: "officer advice", Err: err}
	}

	prompt := fmt.Sprintf(`You are a senior credit officer. Application is in manual review.
PD: %.3f
Policy thresholds: %s

Application (JSON):
%s

Give a concise recommendation (<= 180 words): approve or reject, and 3-5 checks or mitigants.`,
		prob, thresholdsJSON, payloadJSON)

	return s.generate(ctx, "officer advice", llm.Request{
		System:      officerAdviceSystem,
		Input:       prompt,
		MaxTokens:   officerAdviceTokens,
		Temperature: s.temperature,
	})
}

func (s *AIService) generate(ctx context.Context, kind string, req llm.Request) (string, error) {
	if s.provider == nil {
		return "", ErrRendererUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("text generation failed",
			zap.String("op", "AIService.generate"),
			zap.String("kind", kind),
			zap.String("model", s.provider.ModelID()),
			zap.Error(err),
		)
		return "", &RenderError{Kind: kind, Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &RenderError{Kind: kind, Err: llm.ErrEmptyResponse}
	}
	s.logger.Debug("text generated",
		zap.String("op", "AIService.generate"),
		zap.String("kind", kind),
		zap.String("model", resp.Model),
		zap.Duration("latency", time.Since(start)),
	)
	return text, nil
}

func clientName(payload domain.ApplicantPayload) string {
	first := strings.TrimSpace(payload.String(domain.FieldFirstName))
	last := strings.TrimSpace(payload.String(domain.FieldLastName))
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return "there"
	}
	return name
}
