package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-advisor/domain"
)

func TestHTTPOracle_PostsSplitFrame(t *testing.T) {
	var got oracleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"probability": 0.27}`))
	}))
	defer srv.Close()

	fv := testNormalizer().Normalize(domain.ApplicantPayload{domain.FieldLoanAmount: 5000.0, domain.FieldGrade: "B"})
	pd, err := NewHTTPOracle(srv.URL, 0).Probability(context.Background(), fv)
	require.NoError(t, err)
	assert.Equal(t, 0.27, pd)

	assert.Equal(t, fv.Columns(), got.Columns)
	require.Len(t, got.Data, 1)
	assert.Equal(t, 5000.0, got.Data[0][0])
	// missing numbers travel as null
	assert.Nil(t, got.Data[0][1])
	assert.Contains(t, got.Data[0], "B")
}

func TestHTTPOracle_NonFiniteInputsTravelAsNull(t *testing.T) {
	var got oracleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"probability": 0.4}`))
	}))
	defer srv.Close()

	local, err := NewLRUCache(4)
	require.NoError(t, err)
	s := NewCachedScorer(NewHTTPOracle(srv.URL, 0), testNormalizer(), local, nil, nil)

	pd, err := s.Probability(context.Background(), domain.ApplicantPayload{
		domain.FieldLoanAmount: 5000.0,
		domain.FieldRevolUtil:  "inf%",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.4, pd)

	require.Len(t, got.Data, 1)
	for i, col := range got.Columns {
		if col == domain.FieldRevolUtil {
			assert.Nil(t, got.Data[0][i])
		}
	}
}

func TestHTTPOracle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "model not loaded"},
		{"missing probability", http.StatusOK, `{"score": 1}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPOracle(srv.URL, 0).Probability(context.Background(), domain.FeatureVector{})
			assert.Error(t, err)
		})
	}
}
