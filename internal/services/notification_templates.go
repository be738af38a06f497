package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Template is one admin-editable notification message. Placeholders use
// {name} tokens resolved by ReplaceTemplateVariables.
type Template struct {
	Title    string `json:"title"`
	Template string `json:"template"`
	Enabled  bool   `json:"enabled"`
}

// Template keys referenced by the domain senders.
const (
	TemplateInvoiceCreated    = "invoice_created"
	TemplateDueDateReminder   = "due_date_reminder"
	TemplatePaymentReceived   = "payment_received"
	TemplateServiceSuspension = "service_suspension"
	TemplateServiceRestored   = "service_restored"
	TemplateInstallationJob   = "installation_job"
)

func defaultTemplates() map[string]Template {
	return map[string]Template{
		TemplateInvoiceCreated: {
			Title:   "Invoice Created",
			Enabled: true,
			Template: `📄 *Tagihan Baru*

Halo {name},

Tagihan internet Anda telah dibuat:
• No. Invoice: {invoice_number}
• Paket: {package_name}
• Jumlah: Rp {amount}
• Jatuh tempo: {due_date}

Mohon lakukan pembayaran sebelum jatuh tempo.`,
		},
		TemplateDueDateReminder: {
			Title:   "Due Date Reminder",
			Enabled: true,
			Template: `⏰ *Pengingat Jatuh Tempo*

Halo {name},

Tagihan {invoice_number} sebesar Rp {amount} akan jatuh tempo pada {due_date}.

Abaikan pesan ini jika sudah membayar.`,
		},
		TemplatePaymentReceived: {
			Title:   "Payment Received",
			Enabled: true,
			Template: `✅ *Pembayaran Diterima*

Halo {name},

Pembayaran sebesar Rp {amount} untuk invoice {invoice_number} telah kami terima.

Terima kasih!`,
		},
		TemplateServiceSuspension: {
			Title:   "Service Suspended",
			Enabled: true,
			Template: `🔴 *Layanan Diblokir*

Halo {name},

Layanan internet Anda ({package_name}) telah diblokir sementara karena tagihan belum dibayar.

Silakan lakukan pembayaran untuk mengaktifkan kembali.`,
		},
		TemplateServiceRestored: {
			Title:   "Service Restored",
			Enabled: true,
			Template: `🟢 *Layanan Aktif Kembali*

Halo {name},

Layanan internet Anda ({package_name}) telah aktif kembali.

Terima kasih!`,
		},
		TemplateInstallationJob: {
			Title:   "Installation Job Assigned",
			Enabled: true,
			Template: `🔧 *Jadwal Pemasangan Baru*

Kode: {job_code}
Pelanggan: {customer_name}
Alamat: {address}
Telepon: {phone}
Jadwal: {scheduled_at}
Teknisi: {technician}

Catatan: {notes}`,
		},
	}
}

// TemplateStore holds the template map in memory, loads admin overrides
// from a JSON file at startup and rewrites the whole file on every update.
type TemplateStore struct {
	mu        sync.RWMutex
	path      string
	templates map[string]Template
}

// NewTemplateStore loads templates from path, merged over the hardcoded
// defaults. A missing or unreadable file is not an error — defaults apply.
func NewTemplateStore(path string) *TemplateStore {
	s := &TemplateStore{
		path:      path,
		templates: defaultTemplates(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Templates: failed to read %s: %v - using defaults", path, err)
		}
		return s
	}

	var saved map[string]Template
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Printf("Templates: failed to parse %s: %v - using defaults", path, err)
		return s
	}
	for key, tmpl := range saved {
		s.templates[key] = tmpl
	}
	return s
}

// Get returns the template for key and whether it exists.
func (s *TemplateStore) Get(key string) (Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tmpl, ok := s.templates[key]
	return tmpl, ok
}

// IsEnabled reports whether key exists and is enabled.
func (s *TemplateStore) IsEnabled(key string) bool {
	tmpl, ok := s.Get(key)
	return ok && tmpl.Enabled
}

// Keys returns all template keys, sorted.
func (s *TemplateStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// All returns a copy of the template map.
func (s *TemplateStore) All() map[string]Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]Template, len(s.templates))
	for key, tmpl := range s.templates {
		result[key] = tmpl
	}
	return result
}

// Update replaces the template for key and persists the whole map.
func (s *TemplateStore) Update(key string, tmpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[key] = tmpl
	return s.save()
}

// SetEnabled toggles a template without touching its body.
func (s *TemplateStore) SetEnabled(key string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmpl, ok := s.templates[key]
	if !ok {
		return fmt.Errorf("template %s not found", key)
	}
	tmpl.Enabled = enabled
	s.templates[key] = tmpl
	return s.save()
}

// save rewrites the JSON file. Caller holds the lock.
func (s *TemplateStore) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create templates directory: %w", err)
	}
	data, err := json.MarshalIndent(s.templates, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
