package featuregate

import (
	"errors"

	"github.com/postwiselab/Postwise/internal/pkg/entitlements"
	"github.com/postwiselab/Postwise/internal/pkg/trial"
)

// State is the access decision for one gated feature in one session.
type State string

const (
	StateLockedNoTrial        State = "locked_no_trial"
	StateLockedTrialAvailable State = "locked_trial_available"
	StatePreview              State = "preview"
	StateUnlocked             State = "unlocked"
)

// Locked reports whether the state denies access to real data.
func (s State) Locked() bool {
	return s == StateLockedNoTrial || s == StateLockedTrialAvailable
}

// ActionKind classifies dispatched actions at the gate boundary.
type ActionKind int

const (
	ActionRead ActionKind = iota
	ActionMutate
)

var (
	// ErrPreviewMutation rejects any create/update/delete while previewing.
	// It fires before any repository or network call.
	ErrPreviewMutation = errors.New("preview mode is read-only: changes are not saved, upgrade your plan to unlock this feature")

	// ErrFeatureLocked rejects access while the feature is locked and no
	// preview was activated.
	ErrFeatureLocked = errors.New("this feature is not included in your plan")

	// ErrPreviewUnavailable rejects preview activation from an unlocked state.
	ErrPreviewUnavailable = errors.New("preview is only available for locked features")
)

// Evaluate computes the gate state for a feature from plan and trial status.
// Deterministic; computed once per mount. Trial-status fetch failures must be
// mapped by the caller to a fail-closed status before calling, which lands in
// StateLockedNoTrial here.
func Evaluate(feature entitlements.Feature, plan entitlements.Plan, trialStatus trial.Status) State {
	if entitlements.HasFeature(plan, feature) {
		return StateUnlocked
	}
	if trialStatus.Eligible && !trialStatus.Used {
		return StateLockedTrialAvailable
	}
	return StateLockedNoTrial
}

// Machine holds the per-session gate for one feature. It is re-entered fresh
// on every navigation; a plan upgrade is observed on the next mount, not
// reactively mid-session.
type Machine struct {
	feature entitlements.Feature
	state   State
}

// NewMachine evaluates the initial state for a feature.
func NewMachine(feature entitlements.Feature, plan entitlements.Plan, trialStatus trial.Status) *Machine {
	return &Machine{feature: feature, state: Evaluate(feature, plan, trialStatus)}
}

// Resume restores a session where the user had already chosen preview.
// Preview never transitions back to a locked state within a session; only a
// full re-evaluation from (plan, trial) resets it, and an observed upgrade
// wins over a stale preview choice.
func Resume(feature entitlements.Feature, plan entitlements.Plan, trialStatus trial.Status, previewChosen bool) *Machine {
	m := NewMachine(feature, plan, trialStatus)
	if previewChosen && m.state.Locked() {
		m.state = StatePreview
	}
	return m
}

// Feature returns the gated feature id.
func (m *Machine) Feature() entitlements.Feature { return m.feature }

// State returns the current gate state.
func (m *Machine) State() State { return m.state }

// ActivatePreview transitions a locked state into preview.
func (m *Machine) ActivatePreview() error {
	switch m.state {
	case StateLockedNoTrial, StateLockedTrialAvailable:
		m.state = StatePreview
		return nil
	case StatePreview:
		return nil
	default:
		return ErrPreviewUnavailable
	}
}

// Actions lists the upsell actions available in the current state. The gated
// dashboard features (calendar, analytics, team) have no trial-generation
// semantics, so even with an unspent trial the offer is upgrade-or-preview;
// the trial itself is spent through the generation flow.
func (m *Machine) Actions() []string {
	switch m.state {
	case StateLockedTrialAvailable, StateLockedNoTrial:
		return []string{"upgrade", "preview"}
	default:
		return nil
	}
}

// Dispatch is the single enforcement boundary for gated screens. Reads pass
// in UNLOCKED and PREVIEW; mutations pass only in UNLOCKED. The callback only
// runs when access is granted, so no blocked action ever reaches the network.
func (m *Machine) Dispatch(kind ActionKind, fn func() error) error {
	switch m.state {
	case StateUnlocked:
		return fn()
	case StatePreview:
		if kind == ActionMutate {
			return ErrPreviewMutation
		}
		return fn()
	default:
		return ErrFeatureLocked
	}
}
