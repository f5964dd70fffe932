package domain

// DefaultReviewK is the review fraction assumed when metadata omits review_k.
const DefaultReviewK = 0.20

// ModelMetadata is the training-time description shipped next to the model.
type ModelMetadata struct {
	FeatureSet         []string       `json:"feature_set"`
	NumericColumns     []string       `json:"numeric_columns"`
	CategoricalColumns []string       `json:"categorical_columns"`
	ReviewK            *float64       `json:"review_k,omitempty"`
	Policy             *PolicyBlock   `json:"policy,omitempty"`
	Report             map[string]any `json:"report,omitempty"`
}

// PolicyBlock is the thresholds section shared by metadata and policy files.
type PolicyBlock struct {
	Thresholds PolicyThresholds `json:"thresholds" yaml:"thresholds"`
}

type PolicyThresholds struct {
	ThrReject *float64 `json:"thr_reject,omitempty" yaml:"thr_reject"`
	ThrReview *float64 `json:"thr_review,omitempty" yaml:"thr_review"`
}

// ReviewFraction returns review_k or its default.
func (m ModelMetadata) ReviewFraction() float64 {
	if m.ReviewK == nil {
		return DefaultReviewK
	}
	return *m.ReviewK
}
