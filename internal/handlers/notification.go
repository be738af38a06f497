package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
)

// NotificationHandler exposes the delivery pipeline to the admin panel:
// test sends, customer broadcasts, template management and delivery logs.
type NotificationHandler struct {
	notifier  *services.NotificationService
	templates *services.TemplateStore
	billing   *billing.Manager
	db        *gorm.DB
}

func NewNotificationHandler(notifier *services.NotificationService, templates *services.TemplateStore, manager *billing.Manager, db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notifier:  notifier,
		templates: templates,
		billing:   manager,
		db:        db,
	}
}

type testSendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// TestSend sends a single message to one number
func (h *NotificationHandler) TestSend(c *fiber.Ctx) error {
	var req testSendRequest
	if err := c.BodyParser(&req); err != nil || req.Phone == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "phone and message are required",
		})
	}

	result := h.notifier.SendNotificationWithRetry(req.Phone, req.Message, services.SendOptions{})
	return c.JSON(fiber.Map{
		"success": result.Success,
		"data":    result,
	})
}

type broadcastRequest struct {
	Message   string `json:"message"`
	ImagePath string `json:"image_path"`
}

// Broadcast bulk-sends a message to every active customer
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "message is required",
		})
	}

	customers, err := h.billing.GetActiveCustomers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load customers",
		})
	}

	notifications := make([]services.Notification, 0, len(customers))
	for _, customer := range customers {
		if customer.Phone == "" {
			continue
		}
		notifications = append(notifications, services.Notification{
			PhoneNumber: customer.Phone,
			Message:     req.Message,
			Options:     services.SendOptions{ImagePath: req.ImagePath},
		})
	}

	result := h.notifier.SendBulkNotifications(notifications)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// Logs lists recent delivery log entries
func (h *NotificationHandler) Logs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.NotificationLog
	if err := h.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load logs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
	})
}

// ListTemplates returns all templates keyed by template key
func (h *NotificationHandler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.templates.All(),
	})
}

// GetTemplate returns one template
func (h *NotificationHandler) GetTemplate(c *fiber.Ctx) error {
	key := c.Params("key")
	tmpl, ok := h.templates.Get(key)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Template not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    tmpl,
	})
}

// UpdateTemplate replaces one template and persists the file
func (h *NotificationHandler) UpdateTemplate(c *fiber.Ctx) error {
	key := c.Params("key")

	var tmpl services.Template
	if err := c.BodyParser(&tmpl); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.templates.Update(key, tmpl); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save template",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Template updated",
	})
}

type toggleTemplateRequest struct {
	Enabled bool `json:"enabled"`
}

// ToggleTemplate enables or disables one template
func (h *NotificationHandler) ToggleTemplate(c *fiber.Ctx) error {
	key := c.Params("key")

	var req toggleTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := h.templates.SetEnabled(key, req.Enabled); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Template updated",
	})
}
