package featuregate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/trial"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		feature entitlements.Feature
		plan    entitlements.Plan
		status  trial.Status
		want    State
	}{
		{
			name:    "free plan with unspent trial",
			feature: entitlements.FeatureCalendar,
			plan:    entitlements.PlanFree,
			status:  trial.Status{Eligible: true, Used: false},
			want:    StateLockedTrialAvailable,
		},
		{
			name:    "free plan with spent trial",
			feature: entitlements.FeatureCalendar,
			plan:    entitlements.PlanFree,
			status:  trial.Status{Eligible: false, Used: true},
			want:    StateLockedNoTrial,
		},
		{
			name:    "pro plan ignores trial",
			feature: entitlements.FeatureCalendar,
			plan:    entitlements.PlanPro,
			status:  trial.Status{Eligible: true, Used: false},
			want:    StateUnlocked,
		},
		{
			name:    "team locked for pro",
			feature: entitlements.FeatureTeam,
			plan:    entitlements.PlanPro,
			status:  trial.Status{},
			want:    StateLockedNoTrial,
		},
		{
			name:    "fail-closed trial status locks without trial offer",
			feature: entitlements.FeatureAnalytics,
			plan:    entitlements.PlanStarter,
			status:  trial.Status{}, // what a failed fetch degrades to
			want:    StateLockedNoTrial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.feature, tt.plan, tt.status))
		})
	}
}

func TestActivatePreview(t *testing.T) {
	m := NewMachine(entitlements.FeatureCalendar, entitlements.PlanFree, trial.Status{Eligible: true})
	require.Equal(t, StateLockedTrialAvailable, m.State())
	require.NoError(t, m.ActivatePreview())
	assert.Equal(t, StatePreview, m.State())

	m = NewMachine(entitlements.FeatureAnalytics, entitlements.PlanFree, trial.Status{Used: true})
	require.Equal(t, StateLockedNoTrial, m.State())
	require.NoError(t, m.ActivatePreview())
	assert.Equal(t, StatePreview, m.State())

	// Activating again is a no-op, never a transition back to locked.
	require.NoError(t, m.ActivatePreview())
	assert.Equal(t, StatePreview, m.State())

	m = NewMachine(entitlements.FeatureCalendar, entitlements.PlanPro, trial.Status{})
	assert.ErrorIs(t, m.ActivatePreview(), ErrPreviewUnavailable)
}

func TestResume(t *testing.T) {
	m := Resume(entitlements.FeatureCalendar, entitlements.PlanFree, trial.Status{}, true)
	assert.Equal(t, StatePreview, m.State())

	// An observed plan upgrade wins over a stale preview choice.
	m = Resume(entitlements.FeatureCalendar, entitlements.PlanPro, trial.Status{}, true)
	assert.Equal(t, StateUnlocked, m.State())

	m = Resume(entitlements.FeatureCalendar, entitlements.PlanFree, trial.Status{}, false)
	assert.Equal(t, StateLockedNoTrial, m.State())
}

func TestDispatchBlocksPreviewMutations(t *testing.T) {
	m := Resume(entitlements.FeatureCalendar, entitlements.PlanFree, trial.Status{}, true)
	require.Equal(t, StatePreview, m.State())

	called := false
	err := m.Dispatch(ActionMutate, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrPreviewMutation)
	assert.False(t, called, "a blocked mutation must never reach the network layer")

	err = m.Dispatch(ActionRead, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called, "reads are unrestricted in preview")
}

func TestDispatchLockedStates(t *testing.T) {
	m := NewMachine(entitlements.FeatureTeam, entitlements.PlanFree, trial.Status{Eligible: true})

	called := false
	err := m.Dispatch(ActionRead, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrFeatureLocked)
	assert.False(t, called)
}

func TestDispatchUnlockedPassesThrough(t *testing.T) {
	m := NewMachine(entitlements.FeatureTeam, entitlements.PlanBusiness, trial.Status{})

	wantErr := errors.New("backend boom")
	err := m.Dispatch(ActionMutate, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestActions(t *testing.T) {
	m := NewMachine(entitlements.FeatureCalendar, entitlements.PlanFree, trial.Status{Eligible: true})
	assert.Equal(t, []string{"upgrade", "preview"}, m.Actions())

	m = NewMachine(entitlements.FeatureCalendar, entitlements.PlanPro, trial.Status{})
	assert.Nil(t, m.Actions())
}

func TestDemoFixtures(t *testing.T) {
	cal := DemoCalendar(2025, time.March, time.UTC)
	assert.NotEmpty(t, cal)
	for key, posts := range cal {
		day, err := key.Date(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.March, day.Month())
		assert.NotEmpty(t, posts)
	}

	assert.Len(t, DemoAnalytics(), 14)
	assert.NotEmpty(t, DemoTeam())
}
