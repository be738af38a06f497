package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/netbilling/backend/internal/models"
)

// Provider is the read side the notification pipeline needs: entity lookups
// that return nil on not-found rather than an error.
type Provider interface {
	GetCustomerByID(id uint) (*models.Customer, error)
	GetCustomerByUsername(username string) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	GetActiveCustomers() ([]models.Customer, error)
	GetInvoiceByID(id uint) (*models.Invoice, error)
	GetPackageByID(id uint) (*models.Package, error)
	GetPaymentByID(id uint) (*models.Payment, error)
	GetInstallationJobByID(id uint) (*models.InstallationJob, error)
}

// Manager is the GORM-backed Provider plus the write operations the CRUD
// handlers use.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) GetCustomerByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := m.db.Preload("Package").First(&customer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (m *Manager) GetCustomerByUsername(username string) (*models.Customer, error) {
	var customer models.Customer
	err := m.db.Preload("Package").Where("username = ?", username).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (m *Manager) GetCustomerByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	err := m.db.Preload("Package").Where("phone = ?", phone).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (m *Manager) GetActiveCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := m.db.Preload("Package").
		Where("status = ?", models.CustomerStatusActive).
		Order("name").
		Find(&customers).Error
	return customers, err
}

func (m *Manager) GetInvoiceByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := m.db.Preload("Customer").First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (m *Manager) GetPackageByID(id uint) (*models.Package, error) {
	var pkg models.Package
	err := m.db.First(&pkg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (m *Manager) GetPaymentByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := m.db.Preload("Invoice").First(&payment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (m *Manager) GetInstallationJobByID(id uint) (*models.InstallationJob, error) {
	var job models.InstallationJob
	err := m.db.Preload("Customer").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetInvoicesDueIn returns unpaid invoices whose due date falls on the day
// exactly daysAhead days from now. Used by the daily reminder scheduler.
func (m *Manager) GetInvoicesDueIn(daysAhead int, now time.Time) ([]models.Invoice, error) {
	targetDate := now.AddDate(0, 0, daysAhead)
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var invoices []models.Invoice
	err := m.db.Preload("Customer").
		Where("status = ? AND due_date >= ? AND due_date < ?", models.InvoiceStatusUnpaid, startOfDay, endOfDay).
		Find(&invoices).Error
	return invoices, err
}

// CreateInvoice assigns an invoice number and persists the invoice.
func (m *Manager) CreateInvoice(invoice *models.Invoice) error {
	if invoice.InvoiceNumber == "" {
		invoice.InvoiceNumber = fmt.Sprintf("INV-%s-%s",
			time.Now().Format("200601"), uuid.New().String()[:8])
	}
	return m.db.Create(invoice).Error
}

// MarkInvoicePaid records a payment and flips the invoice status in one
// transaction. Returns the created payment.
func (m *Manager) MarkInvoicePaid(invoiceID uint, method, reference string) (*models.Payment, error) {
	var payment *models.Payment
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, invoiceID).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoiceStatusPaid {
			return errors.New("invoice already paid")
		}

		now := time.Now()
		payment = &models.Payment{
			InvoiceID: invoice.ID,
			Amount:    invoice.Amount,
			Method:    method,
			Reference: reference,
			PaidAt:    now,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return tx.Model(&invoice).Updates(map[string]interface{}{
			"status":  models.InvoiceStatusPaid,
			"paid_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// NewJobCode builds a short unique installation job code.
func NewJobCode() string {
	return "JOB-" + uuid.New().String()[:8]
}

// DB exposes the underlying handle for the CRUD handlers.
func (m *Manager) DB() *gorm.DB {
	return m.db
}
