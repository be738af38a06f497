package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/netbilling/backend/internal/settings"
)

// SettingsHandler manages the key/value system settings
type SettingsHandler struct {
	store settings.Store
}

func NewSettingsHandler(store settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// List returns all settings
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	all, err := h.store.All()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load settings",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    all,
	})
}

// Get returns one setting value
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	value := h.store.Get(key, "")
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"key":   key,
			"value": value,
		},
	})
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// Set stores one setting value
func (h *SettingsHandler) Set(c *fiber.Ctx) error {
	key := c.Params("key")

	var req setSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.store.Set(key, req.Value); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save setting",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Setting saved",
	})
}

// Delete removes one setting
func (h *SettingsHandler) Delete(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.store.Delete(key); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete setting",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Setting deleted",
	})
}
