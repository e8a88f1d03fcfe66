package state

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNextKey covers foreign keys, own keys and missing suffixes.
func TestNextKey(t *testing.T) {
	tests := []struct {
		component string
		latest    string
		want      string
	}{
		{"mock_sql_decision", "generate_candidate_1", "mock_sql_decision_1"},
		{"similarity_test", "similarity_test_1", "similarity_test_2"},
		{"similarity_test", "similarity_test_9", "similarity_test_10"},
		{"similarity_test", "similarity_test", "similarity_test_1"},
		{"generate_reverse_question", "", "generate_reverse_question_1"},
	}
	for _, tt := range tests {
		t.Run(tt.component+"/"+tt.latest, func(t *testing.T) {
			assert.Equal(t, tt.want, NextKey(tt.component, tt.latest))
		})
	}
}

// TestNextKey_StrictlyIncreasing chains derivations for one component.
func TestNextKey_StrictlyIncreasing(t *testing.T) {
	key := "generate_candidate_1"
	for i := 1; i <= 25; i++ {
		key = NextKey("verifier", key)
		assert.Equal(t, fmt.Sprintf("verifier_%d", i), key)
	}
}

// TestStore_AppendAndLatest keeps insertion order and never overwrites.
func TestStore_AppendAndLatest(t *testing.T) {
	s := NewStore[string]()
	_, _, ok := s.Latest()
	assert.False(t, ok)
	assert.Equal(t, "", s.LatestKey())

	require.NoError(t, s.Append("b_1", []string{"x"}))
	require.NoError(t, s.Append("a_1", nil))

	key, values, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "a_1", key)
	assert.Empty(t, values)
	assert.Equal(t, []string{"b_1", "a_1"}, s.Keys())

	err := s.Append("b_1", []string{"y"})
	assert.ErrorIs(t, err, ErrBucketExists)
	got, _ := s.Get("b_1")
	assert.Equal(t, []string{"x"}, got)
	assert.Equal(t, 2, s.Len())
}

// TestStore_SharedCandidates stores the same pointer in several buckets.
func TestStore_SharedCandidates(t *testing.T) {
	s := NewStore[*Candidate]()
	c := NewCandidate("SELECT 1")
	require.NoError(t, s.Append(InitialBucket, []*Candidate{c}))
	require.NoError(t, s.Append("mock_sql_decision_1", []*Candidate{c}))

	first, _ := s.Get(InitialBucket)
	second, _ := s.Get("mock_sql_decision_1")
	assert.Same(t, first[0], second[0])
}

// TestStore_JSONPreservesOrder round-trips keys in insertion order.
func TestStore_JSONPreservesOrder(t *testing.T) {
	s := NewStore[string]()
	require.NoError(t, s.Append("zeta_1", []string{"q1"}))
	require.NoError(t, s.Append("alpha_1", []string{"q2", "q3"}))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta_1":["q1"],"alpha_1":["q2","q3"]}`, string(data))

	restored := NewStore[string]()
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, []string{"zeta_1", "alpha_1"}, restored.Keys())
}

// TestStore_NextKeySkipsTaken steps past keys left by an earlier round.
func TestStore_NextKeySkipsTaken(t *testing.T) {
	s := NewStore[string]()
	assert.Equal(t, "similarity_test_1", s.NextKey("similarity_test"))

	require.NoError(t, s.Append("generate_candidate_1", nil))
	require.NoError(t, s.Append(s.NextKey("similarity_test"), nil))
	assert.Equal(t, "similarity_test_1", s.LatestKey())
	assert.Equal(t, "similarity_test_2", s.NextKey("similarity_test"))

	require.NoError(t, s.Append(s.NextKey("mock_sql_decision"), nil))
	assert.Equal(t, "similarity_test_2", s.NextKey("similarity_test"))
}
