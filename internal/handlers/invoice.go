package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
)

// InvoiceHandler manages invoices; creation and payment fire the matching
// WhatsApp notification.
type InvoiceHandler struct {
	billing  *billing.Manager
	notifier *services.NotificationService
}

func NewInvoiceHandler(manager *billing.Manager, notifier *services.NotificationService) *InvoiceHandler {
	return &InvoiceHandler{billing: manager, notifier: notifier}
}

// List returns invoices, optionally filtered by status or customer
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	query := h.billing.DB().Preload("Customer").Order("due_date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.QueryInt("customer_id", 0); customerID > 0 {
		query = query.Where("customer_id = ?", customerID)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load invoices",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    invoices,
	})
}

// Get returns one invoice
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid invoice ID",
		})
	}

	invoice, err := h.billing.GetInvoiceByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load invoice",
		})
	}
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Invoice not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    invoice,
	})
}

type createInvoiceRequest struct {
	CustomerID uint    `json:"customer_id"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"due_date"`
	Notes      string  `json:"notes"`
}

// Create adds an invoice and sends the invoice-created notification
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var req createInvoiceRequest
	if err := c.BodyParser(&req); err != nil || req.CustomerID == 0 || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "customer_id and a positive amount are required",
		})
	}

	customer, err := h.billing.GetCustomerByID(req.CustomerID)
	if err != nil || customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		dueDate = time.Now().AddDate(0, 0, 7)
	}

	invoice := models.Invoice{
		CustomerID: customer.ID,
		PackageID:  customer.PackageID,
		Amount:     req.Amount,
		Status:     models.InvoiceStatusUnpaid,
		DueDate:    dueDate,
		Notes:      req.Notes,
	}
	if err := h.billing.CreateInvoice(&invoice); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create invoice",
		})
	}

	result := h.notifier.SendInvoiceCreatedNotification(invoice.ID)
	if !result.Success && !result.Skipped {
		log.Printf("Invoice notification for invoice %d failed: %s", invoice.ID, result.Error)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"invoice":      invoice,
			"notification": result,
		},
	})
}

type markPaidRequest struct {
	Method    string `json:"method"`
	Reference string `json:"reference"`
}

// MarkPaid records a payment and sends the payment-received notification
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid invoice ID",
		})
	}

	var req markPaidRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Method == "" {
		req.Method = "cash"
	}

	payment, err := h.billing.MarkInvoicePaid(uint(id), req.Method, req.Reference)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	result := h.notifier.SendPaymentReceivedNotification(payment.ID)
	if !result.Success && !result.Skipped {
		log.Printf("Payment notification for payment %d failed: %s", payment.ID, result.Error)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"payment":      payment,
			"notification": result,
		},
	})
}

// Remind sends a due-date reminder for one invoice on demand
func (h *InvoiceHandler) Remind(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid invoice ID",
		})
	}

	result := h.notifier.SendDueDateReminder(uint(id))
	return c.JSON(fiber.Map{
		"success": result.Success || result.Skipped,
		"data":    result,
	})
}
