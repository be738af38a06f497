package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
)

// CustomerHandler manages customers; suspension and restore fire the
// matching WhatsApp notification.
type CustomerHandler struct {
	billing  *billing.Manager
	notifier *services.NotificationService
}

func NewCustomerHandler(manager *billing.Manager, notifier *services.NotificationService) *CustomerHandler {
	return &CustomerHandler{billing: manager, notifier: notifier}
}

// List returns customers, optionally filtered by status
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	query := h.billing.DB().Preload("Package").Order("name")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load customers",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customers,
	})
}

// Get returns one customer
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	customer, err := h.billing.GetCustomerByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load customer",
		})
	}
	if customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

type customerRequest struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	PackageID uint   `json:"package_id"`
}

// Create adds a new customer
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "username and name are required",
		})
	}

	customer := models.Customer{
		Username:  req.Username,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		PackageID: req.PackageID,
		Status:    models.CustomerStatusActive,
		JoinDate:  time.Now(),
	}
	if err := h.billing.DB().Create(&customer).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create customer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

// Update modifies an existing customer
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	customer, err := h.billing.GetCustomerByID(uint(id))
	if err != nil || customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.PackageID != 0 {
		updates["package_id"] = req.PackageID
	}

	if err := h.billing.DB().Model(customer).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update customer",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    customer,
	})
}

// Delete soft-deletes a customer
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	if err := h.billing.DB().Delete(&models.Customer{}, id).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete customer",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Customer deleted",
	})
}

// Suspend marks a customer suspended and sends the suspension notice
func (h *CustomerHandler) Suspend(c *fiber.Ctx) error {
	return h.setStatus(c, models.CustomerStatusSuspended)
}

// Restore marks a customer active and sends the restore notice
func (h *CustomerHandler) Restore(c *fiber.Ctx) error {
	return h.setStatus(c, models.CustomerStatusActive)
}

func (h *CustomerHandler) setStatus(c *fiber.Ctx, status models.CustomerStatus) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid customer ID",
		})
	}

	customer, err := h.billing.GetCustomerByID(uint(id))
	if err != nil || customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	if err := h.billing.DB().Model(customer).Update("status", status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update customer status",
		})
	}

	var result services.SendResult
	if status == models.CustomerStatusSuspended {
		result = h.notifier.SendServiceSuspensionNotification(customer.ID)
	} else {
		result = h.notifier.SendServiceRestoredNotification(customer.ID)
	}
	if !result.Success && !result.Skipped {
		log.Printf("Status notification for customer %d failed: %s", customer.ID, result.Error)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"customer":     customer,
			"notification": result,
		},
	})
}
