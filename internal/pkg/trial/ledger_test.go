package trial

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwiselab/Postwise/app/models"
)

type fakeRepo struct {
	credit  *models.TrialCredit
	getErr  error
	saveErr error
	saved   int
}

func (f *fakeRepo) GetOrCreateTrialCredit(userID uint) (*models.TrialCredit, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.credit == nil {
		f.credit = &models.TrialCredit{UserID: userID, Eligible: true}
	}
	return f.credit, nil
}

func (f *fakeRepo) SaveTrialCredit(tc *models.TrialCredit) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved++
	f.credit = tc
	return nil
}

type memCache struct {
	entries map[string]string
	getErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string]string{}} }

func (m *memCache) Get(key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	v, ok := m.entries[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memCache) Set(key string, value string, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memCache) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

func TestFetchStatusFreshUser(t *testing.T) {
	ledger := NewLedgerWithCache(&fakeRepo{}, newMemCache())

	s, err := ledger.FetchStatus(7)
	require.NoError(t, err)
	assert.True(t, s.Eligible)
	assert.False(t, s.Used)
}

func TestFetchStatusFailsClosed(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("connection refused")}
	ledger := NewLedgerWithCache(repo, newMemCache())

	s, err := ledger.FetchStatus(7)
	assert.Error(t, err)
	assert.False(t, s.Eligible, "a trial is never granted on an error")
	assert.False(t, s.Used)
}

func TestFetchStatusServesCache(t *testing.T) {
	repo := &fakeRepo{}
	c := newMemCache()
	ledger := NewLedgerWithCache(repo, c)

	_, err := ledger.FetchStatus(7)
	require.NoError(t, err)

	// Subsequent reads must not depend on the store.
	repo.getErr = errors.New("store down")
	s, err := ledger.FetchStatus(7)
	require.NoError(t, err)
	assert.True(t, s.Eligible)
}

func TestMarkUsedIsPermanent(t *testing.T) {
	repo := &fakeRepo{}
	ledger := NewLedgerWithCache(repo, newMemCache())

	require.NoError(t, ledger.MarkUsed(7))
	assert.Equal(t, 1, repo.saved)
	assert.True(t, repo.credit.Used)
	assert.False(t, repo.credit.Eligible, "eligible and used are never both true")
	assert.NotNil(t, repo.credit.UsedAt)

	s, err := ledger.FetchStatus(7)
	require.NoError(t, err)
	assert.True(t, s.Used)
	assert.False(t, s.Eligible)

	// Marking twice keeps the original consumption timestamp.
	firstUsedAt := *repo.credit.UsedAt
	require.NoError(t, ledger.MarkUsed(7))
	assert.Equal(t, firstUsedAt, *repo.credit.UsedAt)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	repo := &fakeRepo{}
	c := newMemCache()
	ledger := NewLedgerWithCache(repo, c)

	_, err := ledger.FetchStatus(7)
	require.NoError(t, err)
	ledger.Invalidate(7)
	assert.Empty(t, c.entries)

	repo.getErr = errors.New("store down")
	s, err := ledger.FetchStatus(7)
	assert.Error(t, err)
	assert.Equal(t, Status{}, s)
}
