package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/netbilling/backend/internal/cache"
)

// CacheHandler exposes the cache store to the admin panel: stats, entry
// inspection, full clear and pattern invalidation.
type CacheHandler struct {
	store *cache.Store
}

func NewCacheHandler(store *cache.Store) *CacheHandler {
	return &CacheHandler{store: store}
}

// Stats returns aggregate cache statistics
func (h *CacheHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.store.GetStats(),
	})
}

// Entries returns live entries matching a glob pattern (default all)
func (h *CacheHandler) Entries(c *fiber.Ctx) error {
	pattern := c.Query("pattern", "*")
	entries := h.store.EntriesByPattern(pattern)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// Clear removes every cache entry
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	h.store.Clear()
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Cache cleared",
	})
}

// InvalidatePattern removes entries matching a glob pattern
func (h *CacheHandler) InvalidatePattern(c *fiber.Ctx) error {
	pattern := c.Query("pattern")
	if pattern == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "pattern query parameter is required",
		})
	}
	removed := h.store.InvalidatePattern(pattern)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Pattern invalidated",
		"removed": removed,
	})
}
