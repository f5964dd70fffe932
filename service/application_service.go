package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-advisor/domain"
	"loan-advisor/repository"
)

var (
	ErrNotOpenForReview  = errors.New("application is not open for review")
	ErrInvalidAction     = errors.New("action must be APPROVE or REJECT")
	ErrAdviceUnavailable = errors.New("advice only available for REVIEW cases")
)

const (
	AdviceSourceLLM      = "llm"
	AdviceSourceFallback = "fallback"

	fallbackAdvice = "Advice unavailable (no text provider configured). Suggested manual checks: verify income/employment, review high DTI/utilization, confirm purpose, and affordability."
)

// TextRenderer produces applicant- and officer-facing prose.
type TextRenderer interface {
	RenderClientMessage(ctx context.Context, payload domain.ApplicantPayload, actions []string) (string, error)
	RenderOfficerAdvice(ctx context.Context, payload domain.ApplicantPayload, prob float64, th domain.Thresholds) (string, error)
}

// ApplicationService runs the decision workflow around the engine: scoring,
// manual review, officer advice and client messages for declined applicants.
type ApplicationService struct {
	engine   *Engine
	repo     repository.ApplicationRepository
	renderer TextRenderer
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	reviewing map[string]struct{}
}

// NewApplicationService creates a new ApplicationService with the given repository.
func NewApplicationService(
	engine *Engine,
	repo repository.ApplicationRepository,
	renderer TextRenderer,
	logger *zap.Logger,
) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		engine:    engine,
		repo:      repo,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
		reviewing: make(map[string]struct{}),
	}
}

func (s *ApplicationService) Engine() *Engine {
	return s.engine
}

// Submit scores and stores a new application. Automatic rejections get a
// client message built from the recommendations; if it cannot be rendered
// nothing is stored.
func (s *ApplicationService) Submit(ctx context.Context, payload domain.ApplicantPayload) (*domain.Application, error) {
	payload = payload.Clone()
	scored, err := s.engine.Score(ctx, payload)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	app := &domain.Application{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
		FirstName:      payload.String(domain.FieldFirstName),
		LastName:       payload.String(domain.FieldLastName),
		Payload:        payload,
		ProbDefault:    scored.ProbDefault,
		SystemDecision: scored.Decision,
		PolicySource:   scored.PolicySource,
		Thresholds:     scored.Thresholds,
		Status:         domain.StatusOpen,
	}
	if scored.Decision != domain.DecisionReview {
		app.FinalDecision = scored.Decision
		app.Status = domain.StatusClosed
	}

	if scored.Decision == domain.DecisionReject {
		msg, err := s.clientMessage(ctx, payload)
		if err != nil {
			return nil, err
		}
		app.ClientMessage = msg
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}

	s.logger.Info("application scored",
		zap.String("op", "ApplicationService.Submit"),
		zap.String("application_id", app.ID),
		zap.Float64("prob_default", app.ProbDefault),
		zap.String("decision", string(app.SystemDecision)),
		zap.String("policy_source", app.PolicySource),
	)
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	return s.repo.Get(ctx, id)
}

// Review records the officer's decision on an open REVIEW case. A rejection
// renders the client message before the case is closed. Concurrent reviews
// of one case are serialized here and the final write only lands while the
// stored case is still OPEN.
func (s *ApplicationService) Review(ctx context.Context, id string, input domain.ReviewInput) (*domain.Application, error) {
	if !s.claim(id) {
		return nil, ErrNotOpenForReview
	}
	defer s.release(id)

	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.SystemDecision != domain.DecisionReview || app.Status != domain.StatusOpen {
		return nil, ErrNotOpenForReview
	}
	if input.Action != domain.DecisionApprove && input.Action != domain.DecisionReject {
		return nil, ErrInvalidAction
	}

	if input.Action == domain.DecisionReject {
		msg, err := s.clientMessage(ctx, app.Payload)
		if err != nil {
			return nil, err
		}
		app.ClientMessage = msg
	}

	now := s.now().UTC()
	app.FinalDecision = input.Action
	app.Status = domain.StatusClosed
	app.UpdatedAt = now
	if input.Notes != "" {
		stamp := fmt.Sprintf("[%s] %s", now.Format(time.RFC3339), input.Notes)
		if app.ReviewNotes != "" {
			app.ReviewNotes += "\n"
		}
		app.ReviewNotes += stamp
	}

	if err := s.repo.UpdateIfOpen(ctx, app); err != nil {
		if errors.Is(err, repository.ErrNotOpen) {
			return nil, ErrNotOpenForReview
		}
		return nil, fmt.Errorf("update application: %w", err)
	}

	s.logger.Info("application reviewed",
		zap.String("op", "ApplicationService.Review"),
		zap.String("application_id", app.ID),
		zap.String("final_decision", string(app.FinalDecision)),
	)
	return app, nil
}

// Advice asks the renderer for an officer recommendation on a REVIEW case.
// Renderer failures do not fail the call: a canned advice text is stored and
// marked as such.
func (s *ApplicationService) Advice(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.SystemDecision != domain.DecisionReview {
		return nil, ErrAdviceUnavailable
	}

	advice, source := fallbackAdvice, AdviceSourceFallback
	if s.renderer != nil {
		text, err := s.renderer.RenderOfficerAdvice(ctx, app.Payload, app.ProbDefault, app.Thresholds)
		switch {
		case err == nil:
			advice, source = text, AdviceSourceLLM
		case errors.Is(err, ErrRendererUnavailable):
		default:
			s.logger.Warn("officer advice failed, storing fallback",
				zap.String("op", "ApplicationService.Advice"),
				zap.String("application_id", app.ID),
				zap.Error(err),
			)
			advice = fmt.Sprintf("Advice error: %v", err)
		}
	}

	app.Advice = advice
	app.AdviceSource = source
	app.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return app, nil
}

// claim marks id as under review; it fails if another review holds it.
func (s *ApplicationService) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.reviewing[id]; busy {
		return false
	}
	s.reviewing[id] = struct{}{}
	return true
}

func (s *ApplicationService) release(id string) {
	s.mu.Lock()
	delete(s.reviewing, id)
	s.mu.Unlock()
}

func (s *ApplicationService) clientMessage(ctx context.Context, payload domain.ApplicantPayload) (string, error) {
	if s.renderer == nil {
		return "", ErrRendererUnavailable
	}
	rec, err := s.engine.Recommend(ctx, payload, DefaultTopK)
	if err != nil {
		return "", err
	}
	return s.renderer.RenderClientMessage(ctx, payload, rec.Actions(ClientMessageLines))
}
