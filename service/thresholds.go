package service

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"loan-advisor/domain"
)

const (
	SourceMetadata   = "metadata"
	SourceTopKOnly   = "meta_topk_only"
	SourceDefault    = "default_0.5"
	topKReportFormat = "Threshold@top_%d%%"
)

// ThresholdResolver is one tier of the policy fallback chain. A nil result
// with a nil error means the tier has nothing to offer.
type ThresholdResolver interface {
	Name() string
	Resolve() (*domain.Thresholds, error)
}

// ResolveThresholds walks the chain and returns the first satisfied tier.
// Failing tiers are logged and skipped; the default tier always answers.
func ResolveThresholds(logger *zap.Logger, resolvers ...ThresholdResolver) domain.Thresholds {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, r := range resolvers {
		th, err := r.Resolve()
		if err != nil {
			logger.Warn("skipping threshold source",
				zap.String("op", "ResolveThresholds"),
				zap.String("source", r.Name()),
				zap.Error(err),
			)
			continue
		}
		if th != nil {
			logger.Info("policy thresholds resolved",
				zap.String("op", "ResolveThresholds"),
				zap.String("source", th.Source),
			)
			return *th
		}
	}
	th, _ := DefaultResolver{}.Resolve()
	return *th
}

// DefaultChain is the production order: policy file, metadata policy,
// metadata top-K cut, hardcoded default.
func DefaultChain(policyPath string, meta domain.ModelMetadata) []ThresholdResolver {
	return []ThresholdResolver{
		PolicyFileResolver{Path: policyPath},
		MetadataPolicyResolver{Meta: meta},
		TopKResolver{Meta: meta},
		DefaultResolver{},
	}
}

// PolicyFileResolver reads a standalone policy file (JSON or YAML).
type PolicyFileResolver struct {
	Path string
}

func (r PolicyFileResolver) Name() string { return "policy_file" }

func (r PolicyFileResolver) Resolve() (*domain.Thresholds, error) {
	if r.Path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var block domain.PolicyBlock
	if err := yaml.Unmarshal(data, &block); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", r.Path, err)
	}
	return threeBand(block.Thresholds, filepath.Base(r.Path))
}

// MetadataPolicyResolver uses the policy block embedded in model metadata.
type MetadataPolicyResolver struct {
	Meta domain.ModelMetadata
}

func (r MetadataPolicyResolver) Name() string { return SourceMetadata }

func (r MetadataPolicyResolver) Resolve() (*domain.Thresholds, error) {
	if r.Meta.Policy == nil {
		return nil, nil
	}
	return threeBand(r.Meta.Policy.Thresholds, SourceMetadata)
}

// TopKResolver derives a single review cut from the metadata report entry
// matching review_k, giving a two-band policy.
type TopKResolver struct {
	Meta domain.ModelMetadata
}

func (r TopKResolver) Name() string { return SourceTopKOnly }

func (r TopKResolver) ReportKey() string {
	return fmt.Sprintf(topKReportFormat, int(r.Meta.ReviewFraction()*100))
}

func (r TopKResolver) Resolve() (*domain.Thresholds, error) {
	raw, ok := r.Meta.Report[r.ReportKey()]
	if !ok || raw == nil {
		return nil, nil
	}
	cut, ok := raw.(float64)
	if !ok {
		return nil, fmt.Errorf("%s: got %T, want number", r.ReportKey(), raw)
	}
	if err := checkProbability(cut); err != nil {
		return nil, fmt.Errorf("%s: %w", r.ReportKey(), err)
	}
	return &domain.Thresholds{ThrReview: &cut, Source: SourceTopKOnly}, nil
}

type DefaultResolver struct{}

func (DefaultResolver) Name() string { return SourceDefault }

func (DefaultResolver) Resolve() (*domain.Thresholds, error) {
	review := DefaultReviewThreshold
	return &domain.Thresholds{ThrReview: &review, Source: SourceDefault}, nil
}

func threeBand(pt domain.PolicyThresholds, source string) (*domain.Thresholds, error) {
	if pt.ThrReject == nil || pt.ThrReview == nil {
		return nil, nil
	}
	reject, review := *pt.ThrReject, *pt.ThrReview
	if err := checkProbability(reject); err != nil {
		return nil, fmt.Errorf("thr_reject: %w", err)
	}
	if err := checkProbability(review); err != nil {
		return nil, fmt.Errorf("thr_review: %w", err)
	}
	if reject < review {
		return nil, fmt.Errorf("thr_reject %.4f is below thr_review %.4f", reject, review)
	}
	return &domain.Thresholds{ThrReject: &reject, ThrReview: &review, Source: source}, nil
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", p)
	}
	return nil
}
