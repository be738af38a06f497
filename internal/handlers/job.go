package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/netbilling/backend/internal/billing"
	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
)

// JobHandler manages installation jobs; creating or assigning a job
// broadcasts the job notice to the configured technician groups.
type JobHandler struct {
	billing  *billing.Manager
	notifier *services.NotificationService
}

func NewJobHandler(manager *billing.Manager, notifier *services.NotificationService) *JobHandler {
	return &JobHandler{billing: manager, notifier: notifier}
}

// List returns installation jobs, optionally filtered by status
func (h *JobHandler) List(c *fiber.Ctx) error {
	query := h.billing.DB().Preload("Customer").Order("scheduled_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.InstallationJob
	if err := query.Find(&jobs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load jobs",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    jobs,
	})
}

// Get returns one installation job
func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}

	job, err := h.billing.GetInstallationJobByID(uint(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to load job",
		})
	}
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}

type createJobRequest struct {
	CustomerID  uint   `json:"customer_id"`
	Technician  string `json:"technician"`
	ScheduledAt string `json:"scheduled_at"`
	Notes       string `json:"notes"`
}

// Create adds an installation job and broadcasts it to the group chats
func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req createJobRequest
	if err := c.BodyParser(&req); err != nil || req.CustomerID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "customer_id is required",
		})
	}

	customer, err := h.billing.GetCustomerByID(req.CustomerID)
	if err != nil || customer == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Customer not found",
		})
	}

	scheduledAt, err := time.Parse("2006-01-02 15:04", req.ScheduledAt)
	if err != nil {
		scheduledAt = time.Now().AddDate(0, 0, 1)
	}

	job := models.InstallationJob{
		JobCode:     billing.NewJobCode(),
		CustomerID:  customer.ID,
		Technician:  req.Technician,
		ScheduledAt: scheduledAt,
		Status:      models.JobStatusScheduled,
		Notes:       req.Notes,
	}
	if req.Technician != "" {
		job.Status = models.JobStatusAssigned
	}
	if err := h.billing.DB().Create(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create job",
		})
	}

	result := h.notifier.SendInstallationJobNotification(job.ID)
	if !result.Success && !result.Skipped {
		log.Printf("Job notification for job %d failed: %s", job.ID, result.Error)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"job":          job,
			"notification": result,
		},
	})
}

type assignJobRequest struct {
	Technician string `json:"technician"`
}

// Assign sets the technician and re-broadcasts the job notice
func (h *JobHandler) Assign(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}

	var req assignJobRequest
	if err := c.BodyParser(&req); err != nil || req.Technician == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "technician is required",
		})
	}

	job, err := h.billing.GetInstallationJobByID(uint(id))
	if err != nil || job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	updates := map[string]interface{}{
		"technician": req.Technician,
		"status":     models.JobStatusAssigned,
	}
	if err := h.billing.DB().Model(job).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to assign job",
		})
	}

	result := h.notifier.SendInstallationJobNotification(job.ID)
	if !result.Success && !result.Skipped {
		log.Printf("Job notification for job %d failed: %s", job.ID, result.Error)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"job":          job,
			"notification": result,
		},
	})
}

// Complete marks a job done
func (h *JobHandler) Complete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}

	job, err := h.billing.GetInstallationJobByID(uint(id))
	if err != nil || job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.JobStatusDone,
		"completed_at": now,
	}
	if err := h.billing.DB().Model(job).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to complete job",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    job,
	})
}
