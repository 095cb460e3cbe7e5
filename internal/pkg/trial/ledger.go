package trial

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/cache"
)

const (
	statusCacheKey = "trial:status:%d"
	statusCacheTTL = time.Hour
)

// Status is the account-lifetime trial state. Eligible and Used are never
// both true; Used is permanent once set.
type Status struct {
	Eligible bool `json:"eligible"`
	Used     bool `json:"used"`
}

// failClosed is what callers see when the backend cannot be reached: a trial
// is never granted on an error.
var failClosed = Status{Eligible: false, Used: false}

// Repository provides DB operations used by the ledger.
type Repository interface {
	GetOrCreateTrialCredit(userID uint) (*models.TrialCredit, error)
	SaveTrialCredit(tc *models.TrialCredit) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a trial repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetOrCreateTrialCredit(userID uint) (*models.TrialCredit, error) {
	var tc models.TrialCredit
	if err := r.db.Where("user_id = ?", userID).First(&tc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tc = models.TrialCredit{UserID: userID, Eligible: true}
			if err := r.db.Create(&tc).Error; err != nil {
				return nil, err
			}
			return &tc, nil
		}
		return nil, err
	}
	return &tc, nil
}

func (r *gormRepository) SaveTrialCredit(tc *models.TrialCredit) error {
	return r.db.Save(tc).Error
}

// Cache is the session-scoped status cache. The default implementation sits
// on Redis; tests inject an in-memory fake.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
}

type redisCache struct{}

func (redisCache) Get(key string) (string, error) { return cache.Get(key) }
func (redisCache) Set(key string, value string, ttl time.Duration) error {
	return cache.Set(key, value, ttl)
}
func (redisCache) Delete(key string) error { return cache.Delete(key) }

// Ledger caches per-user trial status for the session and mirrors server-side
// consumption locally. The server stays authoritative: the cache is
// last-write-wins, so a stale read can only cause a denied double attempt,
// never a double grant.
type Ledger struct {
	repo  Repository
	cache Cache
}

// NewLedger creates a ledger with the Redis-backed cache.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo, cache: redisCache{}}
}

// NewLedgerWithCache creates a ledger with an injected cache.
func NewLedgerWithCache(repo Repository, c Cache) *Ledger {
	return &Ledger{repo: repo, cache: c}
}

// FetchStatus returns the user's trial status, serving the session cache when
// warm. On any failure the returned status is fail-closed alongside the error.
func (l *Ledger) FetchStatus(userID uint) (Status, error) {
	key := fmt.Sprintf(statusCacheKey, userID)
	if raw, err := l.cache.Get(key); err == nil && raw != "" {
		var s Status
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s, nil
		}
	}

	tc, err := l.repo.GetOrCreateTrialCredit(userID)
	if err != nil {
		return failClosed, fmt.Errorf("trial status lookup failed: %w", err)
	}

	s := Status{Eligible: tc.Eligible && !tc.Used, Used: tc.Used}
	l.storeCache(userID, s)
	return s, nil
}

// MarkUsed records local consumption after a successful trial generation so
// the next read does not need a refetch. A 403 from the backend must not
// reach this method.
func (l *Ledger) MarkUsed(userID uint) error {
	tc, err := l.repo.GetOrCreateTrialCredit(userID)
	if err != nil {
		return fmt.Errorf("trial credit lookup failed: %w", err)
	}
	tc.MarkUsed()
	if err := l.repo.SaveTrialCredit(tc); err != nil {
		return fmt.Errorf("trial credit update failed: %w", err)
	}
	l.storeCache(userID, Status{Eligible: false, Used: true})
	return nil
}

// Invalidate drops the cached status, forcing the next read to hit the store.
func (l *Ledger) Invalidate(userID uint) {
	if err := l.cache.Delete(fmt.Sprintf(statusCacheKey, userID)); err != nil {
		log.Debugf("[Trial] cache invalidation failed for user %d: %v", userID, err)
	}
}

func (l *Ledger) storeCache(userID uint, s Status) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := l.cache.Set(fmt.Sprintf(statusCacheKey, userID), string(raw), statusCacheTTL); err != nil {
		log.Debugf("[Trial] cache write failed for user %d: %v", userID, err)
	}
}
