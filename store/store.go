package store

import (
	"time"

	"github.com/pathlight/pathlight/internal/profile"
	"github.com/pathlight/pathlight/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// Cache settings
	cacheConfig cache.Config

	// Caches
	subjectCache  *cache.Cache // cache for subjects
	questionCache *cache.Cache // cache for question read models
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	// Default cache settings
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
		OnEviction:      nil,
	}

	store := &Store{
		driver:        driver,
		profile:       profile,
		cacheConfig:   cacheConfig,
		subjectCache:  cache.New(cacheConfig),
		questionCache: cache.New(cacheConfig),
	}

	return store
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	// Stop all cache cleanup goroutines
	s.subjectCache.Close()
	s.questionCache.Close()

	return s.driver.Close()
}
