package planner

import (
	"context"
	"errors"
	"testing"

	"deskpilot/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	plan      *api.Plan
	errs      []error
	calls     int
	transient bool
}

func (s *stubClient) Plan(ctx context.Context, req Request) (*api.Plan, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return s.plan, nil
}

func (s *stubClient) IsTransientError(err error) bool { return s.transient }

func TestFallbackClientFirstProviderWins(t *testing.T) {
	primary := &stubClient{plan: &api.Plan{Done: "from primary"}}
	secondary := &stubClient{plan: &api.Plan{Done: "from secondary"}}
	f := &FallbackClient{Clients: []Client{primary, secondary}, MaxRetries: 3}

	plan, err := f.Plan(context.Background(), Request{Objective: "x"})
	require.NoError(t, err)
	assert.Equal(t, "from primary", plan.Done)
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, secondary.calls)
}

func TestFallbackClientRetriesTransientErrors(t *testing.T) {
	primary := &stubClient{
		plan:      &api.Plan{Done: "recovered"},
		errs:      []error{errors.New("rate limit"), errors.New("rate limit")},
		transient: true,
	}
	f := &FallbackClient{Clients: []Client{primary}, MaxRetries: 3}

	plan, err := f.Plan(context.Background(), Request{Objective: "x"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", plan.Done)
	assert.Equal(t, 3, primary.calls)
}

func TestFallbackClientMovesToNextOnPermanentError(t *testing.T) {
	primary := &stubClient{errs: []error{errors.New("invalid api key")}, plan: &api.Plan{}}
	secondary := &stubClient{plan: &api.Plan{Done: "from secondary"}}
	f := &FallbackClient{Clients: []Client{primary, secondary}, MaxRetries: 3}

	plan, err := f.Plan(context.Background(), Request{Objective: "x"})
	require.NoError(t, err)
	assert.Equal(t, "from secondary", plan.Done)
	// Permanent errors do not burn the retry budget on the same provider.
	assert.Equal(t, 1, primary.calls)
}

func TestFallbackClientAllProvidersFail(t *testing.T) {
	primary := &stubClient{errs: []error{errors.New("boom")}}
	f := &FallbackClient{Clients: []Client{primary}, MaxRetries: 1}

	_, err := f.Plan(context.Background(), Request{Objective: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
