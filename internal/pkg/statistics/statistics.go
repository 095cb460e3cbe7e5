package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/postwiselab/Postwise/app/models"
	"github.com/postwiselab/Postwise/internal/pkg/cache"
	"github.com/postwiselab/Postwise/internal/pkg/database"
	"github.com/postwiselab/Postwise/internal/pkg/metrics/counter"
)

const (
	CacheKeyContentTotal     = "statistics:content:total"
	CacheKeyGenerationsDaily = "statistics:generations:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers            = "statistics:users:total"
	CacheExpiration          = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers shown on the admin dashboard.
type StatisticsData struct {
	TodayGenerations int
	TotalUsers       int
	TotalContent     int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached aggregates are stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached aggregates when the update interval has passed.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Updating statistics cache...")

		// Drain pending view/export counters first so the aggregates see them.
		if err := counter.FlushAll(); err != nil {
			log.Printf("Error flushing request counters: %v", err)
		}

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			log.Println("Statistics cache updated")
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next call to UpdateCacheIfNeeded to refresh.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	// Get database connection
	db := database.GetDB()

	// Count total generated content items
	var totalContent int64
	if err := db.Model(&models.GeneratedContent{}).Count(&totalContent).Error; err != nil {
		log.Printf("Error counting total content: %v", err)
		return err
	}

	// Count today's generation requests
	var todayGenerations int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.GenerationRequest{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayGenerations).Error; err != nil {
		log.Printf("Error counting today's generations: %v", err)
		return err
	}

	// Count total users
	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	// Store values in cache
	if err := cache.Set(CacheKeyContentTotal, strconv.FormatInt(totalContent, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total content: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyGenerationsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayGenerations, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's generations: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Total Content: %d, Today's Generations: %d, Total Users: %d",
		totalContent, todayGenerations, totalUsers)

	return nil
}

// GetTotalContent returns the total number of generated content items from cache or database
func GetTotalContent() int {
	// Try to get from cache first
	val, err := cache.Get(CacheKeyContentTotal)
	if err != nil {
		// If not in cache, get from database and update cache
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.GeneratedContent{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total content: %v", err)
			return 0
		}

		// Update cache
		if err := cache.Set(CacheKeyContentTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total content: %v", err)
		}

		return int(count)
	}

	// Convert string to int
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayGenerations returns the number of generation requests made today from cache or database
func GetTodayGenerations() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyGenerationsDaily, today)

	// Try to get from cache first
	val, err := cache.Get(dailyKey)
	if err != nil {
		// If not in cache, get from database and update cache
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.GenerationRequest{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error; err != nil {
			log.Printf("Error counting today's generations: %v", err)
			return 0
		}

		// Update cache
		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's generations: %v", err)
		}

		return int(count)
	}

	// Convert string to int
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	// Try to get from cache first
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		// If not in cache, get from database and update cache
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		// Update cache
		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	// Convert string to int
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayGenerations: GetTodayGenerations(),
		TotalUsers:       GetTotalUsers(),
		TotalContent:     GetTotalContent(),
	}
}
