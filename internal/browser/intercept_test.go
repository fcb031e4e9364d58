package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// newRuleOnlyInterceptor builds an interceptor with enabled pre-set so Stub
// exercises rule bookkeeping without a live browser to activate fetch on
func newRuleOnlyInterceptor() *Interceptor {
	return &Interceptor{
		logger:  arbor.NewLogger(),
		enabled: true,
	}
}

func TestInterceptor_FirstMatchWins(t *testing.T) {
	ic := newRuleOnlyInterceptor()

	require.NoError(t, ic.Stub("**/v1alpha/*", StubResponse{
		Status:      500,
		ContentType: "application/json",
		Body:        []byte(`{"error":"broad"}`),
	}))
	require.NoError(t, ic.Stub("**/v1alpha/sources*", StubResponse{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"sources":[]}`),
	}))

	// Registration order decides between overlapping patterns, not specificity
	rule, matched := ic.match("http://localhost:4173/v1alpha/sources")
	require.True(t, matched)
	assert.Equal(t, "**/v1alpha/*", rule.pattern)
	assert.Equal(t, int64(500), rule.response.Status)
}

func TestInterceptor_UnmatchedURLContinues(t *testing.T) {
	ic := newRuleOnlyInterceptor()
	require.NoError(t, ic.Stub("**/v1alpha/sources*", StubResponse{Status: 200}))

	_, matched := ic.match("http://localhost:4173/v1alpha/sessions")
	assert.False(t, matched)
}

func TestInterceptor_RulesAccumulateInOrder(t *testing.T) {
	ic := newRuleOnlyInterceptor()
	require.NoError(t, ic.Stub("**/first", StubResponse{Status: 200}))
	require.NoError(t, ic.Stub("**/second", StubResponse{Status: 201}))
	require.NoError(t, ic.Stub("**/first", StubResponse{Status: 503}))

	ic.mu.RLock()
	defer ic.mu.RUnlock()
	require.Len(t, ic.rules, 3)
	assert.Equal(t, "**/first", ic.rules[0].pattern)
	assert.Equal(t, int64(200), ic.rules[0].response.Status)
	assert.Equal(t, "**/second", ic.rules[1].pattern)
	// The duplicate registration stays last and therefore never resolves
	assert.Equal(t, int64(503), ic.rules[2].response.Status)
}

func TestInterceptor_RejectsEmptyPattern(t *testing.T) {
	ic := newRuleOnlyInterceptor()
	assert.Error(t, ic.Stub("", StubResponse{Status: 200}))
}
