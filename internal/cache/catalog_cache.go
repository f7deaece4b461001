package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CatalogDataSource is the subset of catalog reads the cache serves.
type CatalogDataSource interface {
	ListPublishedCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
}

const (
	courseKeyPrefix  = "course:slug:"
	allCoursesKey    = "course:all"
	cacheCheckPeriod = 10 * time.Second
	maxRetries       = 3
	initialRetryWait = 2 * time.Second
)

// CatalogCache keeps published courses in memory so the public catalog
// never blocks on the database. Stale reads up to one TTL are acceptable.
type CatalogCache struct {
	cache       *gocache.Cache
	dataSource  CatalogDataSource
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
}

// NewCatalogCache creates a new catalog cache with slug-based storage
func NewCatalogCache(dataSource CatalogDataSource, ttlSeconds int) *CatalogCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	cache := gocache.New(gocache.NoExpiration, cacheCheckPeriod)

	return &CatalogCache{
		cache:      cache,
		dataSource: dataSource,
		ttl:        ttl,
	}
}

// Initialize performs initial cache population (synchronous, blocks until ready)
// Should be called during application startup before accepting requests
func (cc *CatalogCache) Initialize() error {
	logger.Info("Initializing catalog cache...")
	startTime := time.Now()

	if err := cc.refreshWithRetry(); err != nil {
		logger.Error("Failed to initialize catalog cache", zap.Error(err))
		return err
	}

	cc.mu.Lock()
	cc.ready = true
	cc.lastRefresh = time.Now()
	cc.mu.Unlock()

	logger.Info("Catalog cache initialized successfully",
		zap.Duration("duration", time.Since(startTime)))

	go cc.schedulePeriodicRefresh()

	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (cc *CatalogCache) IsReady() bool {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return cc.ready
}

// GetCourseBySlug retrieves a single published course from cache.
// Returns immediately, never triggers a database fetch.
func (cc *CatalogCache) GetCourseBySlug(slug string) (*models.Course, error) {
	if !cc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := cc.cache.Get(courseKeyPrefix + slug)
	if !found {
		metrics.CacheMisses.WithLabelValues("course_by_slug").Inc()
		logger.Debug("Course not found in cache", zap.String("slug", slug))
		return nil, fmt.Errorf("course not found")
	}

	metrics.CacheHits.WithLabelValues("course_by_slug").Inc()

	course, ok := data.(*models.Course)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("slug", slug))
		cc.cache.Delete(courseKeyPrefix + slug)
		return nil, fmt.Errorf("invalid cache data")
	}

	return course, nil
}

// GetPublishedCourses retrieves all published courses from cache
func (cc *CatalogCache) GetPublishedCourses() ([]*models.Course, error) {
	if !cc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := cc.cache.Get(allCoursesKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("courses_all").Inc()
		return nil, fmt.Errorf("course list not in cache")
	}

	metrics.CacheHits.WithLabelValues("courses_all").Inc()

	slugs, ok := data.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid cache data")
	}

	courses := make([]*models.Course, 0, len(slugs))
	for _, slug := range slugs {
		if entry, found := cc.cache.Get(courseKeyPrefix + slug); found {
			if course, ok := entry.(*models.Course); ok {
				courses = append(courses, course)
			}
		}
	}

	return courses, nil
}

// Invalidate forces a refresh on the next scheduler tick
func (cc *CatalogCache) Invalidate() {
	cc.mu.Lock()
	cc.lastRefresh = time.Time{}
	cc.mu.Unlock()
}

// refresh replaces the cached course set atomically from the data source
func (cc *CatalogCache) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	courses, err := cc.dataSource.ListPublishedCourses(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch courses: %w", err)
	}

	slugs := make([]string, 0, len(courses))
	for _, course := range courses {
		cc.cache.Set(courseKeyPrefix+course.Slug, course, gocache.NoExpiration)
		slugs = append(slugs, course.Slug)
	}
	cc.cache.Set(allCoursesKey, slugs, gocache.NoExpiration)

	metrics.CacheSize.WithLabelValues("catalog").Set(float64(len(courses)))
	logger.Info("Catalog cache refreshed", zap.Int("count", len(courses)))

	return nil
}

func (cc *CatalogCache) refreshWithRetry() error {
	var lastErr error
	wait := initialRetryWait

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if lastErr = cc.refresh(); lastErr == nil {
			return nil
		}

		logger.Warn("Catalog cache refresh failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < maxRetries {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return lastErr
}

// schedulePeriodicRefresh refreshes the cache once per TTL in the background
func (cc *CatalogCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(cacheCheckPeriod)
	defer ticker.Stop()

	for range ticker.C {
		cc.mu.RLock()
		due := time.Since(cc.lastRefresh) >= cc.ttl
		refreshing := cc.refreshing
		cc.mu.RUnlock()

		if !due || refreshing {
			continue
		}

		cc.mu.Lock()
		cc.refreshing = true
		cc.mu.Unlock()

		if err := cc.refresh(); err != nil {
			logger.Error("Background catalog refresh failed", zap.Error(err))
		} else {
			cc.mu.Lock()
			cc.lastRefresh = time.Now()
			cc.mu.Unlock()
		}

		cc.mu.Lock()
		cc.refreshing = false
		cc.mu.Unlock()
	}
}
