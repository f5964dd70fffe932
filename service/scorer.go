package service

import (
	"context"
	"encoding/json"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"loan-advisor/domain"
	"loan-advisor/repository"
)

// cacheKeyFields are the payload fields that make up a cache key. The name
// fields do not affect the model; they are kept so the key is the same
// slimmed payload the renderer sees.
var cacheKeyFields = []string{
	domain.FieldLoanAmount, domain.FieldInterestRate, domain.FieldFicoLow, domain.FieldFicoHigh,
	domain.FieldAnnualIncome, domain.FieldDTI, domain.FieldRevolUtil, domain.FieldEmpLength,
	domain.FieldTerm, domain.FieldGrade, domain.FieldSubGrade, domain.FieldHomeOwnership,
	domain.FieldVerificationStatus, domain.FieldPurpose,
	domain.FieldFirstName, domain.FieldLastName,
}

// ProbabilityCache is the in-process memo table. Implementations must be
// safe for concurrent use.
type ProbabilityCache interface {
	Get(key string) (float64, bool)
	Add(key string, prob float64) bool
	Purge()
	Len() int
}

// NewLRUCache returns a bounded least-recently-used ProbabilityCache.
func NewLRUCache(size int) (ProbabilityCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return lru.New[string, float64](size)
}

// CachedScorer memoizes normalization plus oracle calls. Entries are never
// invalidated: after a model or policy change the process must be restarted
// (and the shared tier's key prefix bumped).
type CachedScorer struct {
	oracle     Oracle
	normalizer *Normalizer
	local      ProbabilityCache
	shared     repository.CacheRepository
	logger     *zap.Logger
}

// NewCachedScorer wires the scorer. shared may be nil.
func NewCachedScorer(
	oracle Oracle,
	normalizer *Normalizer,
	local ProbabilityCache,
	shared repository.CacheRepository,
	logger *zap.Logger,
) *CachedScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedScorer{
		oracle:     oracle,
		normalizer: normalizer,
		local:      local,
		shared:     shared,
		logger:     logger,
	}
}

// Probability returns the raw PD of the payload.
func (s *CachedScorer) Probability(ctx context.Context, payload domain.ApplicantPayload) (float64, error) {
	key := CacheKey(payload)

	if p, ok := s.local.Get(key); ok {
		return p, nil
	}

	if s.shared != nil {
		if raw, ok := s.shared.Get(ctx, key); ok {
			if p, err := strconv.ParseFloat(raw, 64); err == nil {
				s.local.Add(key, p)
				return p, nil
			}
			s.logger.Warn("discarding malformed shared cache entry",
				zap.String("op", "CachedScorer.Probability"),
				zap.String("value", raw),
			)
		}
	}

	// Score the slimmed payload so equal keys always see equal inputs.
	prob, err := callOracle(ctx, s.oracle, s.normalizer, slim(payload))
	if err != nil {
		return 0, err
	}
	s.local.Add(key, prob)

	if s.shared != nil {
		if err := s.shared.Set(ctx, key, strconv.FormatFloat(prob, 'f', -1, 64)); err != nil {
			s.logger.Warn("failed to write shared cache",
				zap.String("op", "CachedScorer.Probability"),
				zap.Error(err),
			)
		}
	}
	return prob, nil
}

// Reset drops every local entry.
func (s *CachedScorer) Reset() {
	s.local.Purge()
}

func (s *CachedScorer) Len() int {
	return s.local.Len()
}

// CacheKey serializes the key fields with sorted keys.
func CacheKey(payload domain.ApplicantPayload) string {
	b, err := json.Marshal(slim(payload))
	if err != nil {
		// Only unsupported values (NaN, channels) get here; fall back to a
		// printed form which is still deterministic.
		return keyFallback(payload)
	}
	return string(b)
}

func slim(payload domain.ApplicantPayload) domain.ApplicantPayload {
	out := make(domain.ApplicantPayload, len(cacheKeyFields))
	for _, k := range cacheKeyFields {
		if v, ok := payload[k]; ok {
			out[k] = v
		}
	}
	return out
}

func keyFallback(payload domain.ApplicantPayload) string {
	s := slim(payload)
	b := make([]byte, 0, 256)
	for _, k := range cacheKeyFields {
		if v, ok := s[k]; ok {
			b = append(b, k...)
			b = append(b, '=')
			b = append(b, []byte(strconv.Quote(stringify(v)))...)
			b = append(b, ';')
		}
	}
	return string(b)
}
