package services_test

import (
	"errors"
	"time"

	"github.com/netbilling/backend/internal/models"
	"github.com/netbilling/backend/internal/services"
	"github.com/netbilling/backend/internal/settings"
)

// fakeTransport records every send and fails according to failWith.
type fakeTransport struct {
	sent     []sentMessage
	failWith error
	// failFirst makes only the first N sends fail, then succeed.
	failFirst int
	attempts  int
}

type sentMessage struct {
	To      string
	Payload services.Payload
}

func (t *fakeTransport) SendMessage(to string, payload services.Payload) error {
	t.attempts++
	if t.failWith != nil {
		if t.failFirst == 0 || t.attempts <= t.failFirst {
			return t.failWith
		}
	}
	t.sent = append(t.sent, sentMessage{To: to, Payload: payload})
	return nil
}

// memoryQuota is an in-memory QuotaCounter keyed by calendar day.
type memoryQuota struct {
	counts map[string]int
}

func newMemoryQuota() *memoryQuota {
	return &memoryQuota{counts: make(map[string]int)}
}

func (q *memoryQuota) CountForDay(day time.Time) int {
	return q.counts[day.Format("2006-01-02")]
}

func (q *memoryQuota) Increment(day time.Time) {
	q.counts[day.Format("2006-01-02")]++
}

// fakeProvider serves billing entities from maps. Absent IDs return nil, nil
// the same way the real manager does.
type fakeProvider struct {
	customers map[uint]*models.Customer
	invoices  map[uint]*models.Invoice
	packages  map[uint]*models.Package
	payments  map[uint]*models.Payment
	jobs      map[uint]*models.InstallationJob
	err       error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		customers: make(map[uint]*models.Customer),
		invoices:  make(map[uint]*models.Invoice),
		packages:  make(map[uint]*models.Package),
		payments:  make(map[uint]*models.Payment),
		jobs:      make(map[uint]*models.InstallationJob),
	}
}

func (p *fakeProvider) GetCustomerByID(id uint) (*models.Customer, error) {
	return p.customers[id], p.err
}

func (p *fakeProvider) GetCustomerByUsername(username string) (*models.Customer, error) {
	for _, c := range p.customers {
		if c.Username == username {
			return c, p.err
		}
	}
	return nil, p.err
}

func (p *fakeProvider) GetCustomerByPhone(phone string) (*models.Customer, error) {
	for _, c := range p.customers {
		if c.Phone == phone {
			return c, p.err
		}
	}
	return nil, p.err
}

func (p *fakeProvider) GetActiveCustomers() ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range p.customers {
		if c.Status == models.CustomerStatusActive {
			out = append(out, *c)
		}
	}
	return out, p.err
}

func (p *fakeProvider) GetInvoiceByID(id uint) (*models.Invoice, error) {
	return p.invoices[id], p.err
}

func (p *fakeProvider) GetPackageByID(id uint) (*models.Package, error) {
	return p.packages[id], p.err
}

func (p *fakeProvider) GetPaymentByID(id uint) (*models.Payment, error) {
	return p.payments[id], p.err
}

func (p *fakeProvider) GetInstallationJobByID(id uint) (*models.InstallationJob, error) {
	return p.jobs[id], p.err
}

var errSendFailed = errors.New("gateway timeout")

// testEnv bundles a NotificationService with in-memory collaborators, a
// recording sleep hook and a fixed clock.
type testEnv struct {
	svc       *services.NotificationService
	store     settings.Store
	quota     *memoryQuota
	provider  *fakeProvider
	templates *services.TemplateStore
	transport *fakeTransport
	sleeps    []time.Duration
	now       time.Time
}

func newTestEnv(transport *fakeTransport) *testEnv {
	env := &testEnv{
		store:     settings.NewMemoryStore(),
		quota:     newMemoryQuota(),
		provider:  newFakeProvider(),
		templates: services.NewTemplateStore(""),
		transport: transport,
		now:       time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	env.svc = services.NewNotificationService(env.store, env.templates, env.quota, env.provider)
	if transport != nil {
		env.svc.SetTransport(transport)
	}
	env.svc.SetSleepFunc(func(d time.Duration) {
		env.sleeps = append(env.sleeps, d)
	})
	env.svc.SetNowFunc(func() time.Time {
		return env.now
	})

	return env
}
