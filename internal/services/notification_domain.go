package services

import (
	"log"
)

// Domain senders turn billing events into messages. Shared shape: a
// disabled template short-circuits as a skipped success (turning a
// notification off is configuration, not an error), missing entities are
// reported as errors, delivery goes through the single or bulk sender.

func (s *NotificationService) companyName() string {
	return s.settings.Get("company_name", "NetBilling")
}

// renderTemplate resolves a template key and substitutes data. The second
// return is false when the template is missing or disabled.
func (s *NotificationService) renderTemplate(key string, data map[string]string) (string, bool) {
	tmpl, ok := s.templates.Get(key)
	if !ok || !tmpl.Enabled {
		return "", false
	}
	data["company_name"] = s.companyName()
	return ReplaceTemplateVariables(tmpl.Template, data), true
}

// SendInvoiceCreatedNotification notifies a customer that a new invoice
// exists.
func (s *NotificationService) SendInvoiceCreatedNotification(invoiceID uint) SendResult {
	if !s.templates.IsEnabled(TemplateInvoiceCreated) {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	invoice, err := s.billing.GetInvoiceByID(invoiceID)
	if err != nil || invoice == nil || invoice.Customer == nil {
		return SendResult{Success: false, Error: "Missing data"}
	}
	customer := invoice.Customer

	packageName := ""
	if pkg, err := s.billing.GetPackageByID(invoice.PackageID); err == nil && pkg != nil {
		packageName = pkg.Name
	}

	data := map[string]string{
		"name":           customer.Name,
		"username":       customer.Username,
		"invoice_number": invoice.InvoiceNumber,
		"package_name":   packageName,
		"amount":         FormatCurrency(invoice.Amount),
		"due_date":       FormatDate(invoice.DueDate),
	}
	message, ok := s.renderTemplate(TemplateInvoiceCreated, data)
	if !ok {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	result := s.SendNotificationWithRetry(customer.Phone, message, SendOptions{})
	s.logDelivery(TemplateInvoiceCreated, FormatPhoneNumber(customer.Phone), message, &customer.ID, result)
	return result
}

// SendPaymentReceivedNotification confirms a recorded payment.
func (s *NotificationService) SendPaymentReceivedNotification(paymentID uint) SendResult {
	if !s.templates.IsEnabled(TemplatePaymentReceived) {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	payment, err := s.billing.GetPaymentByID(paymentID)
	if err != nil || payment == nil || payment.Invoice == nil {
		return SendResult{Success: false, Error: "Missing data"}
	}

	customer, err := s.billing.GetCustomerByID(payment.Invoice.CustomerID)
	if err != nil || customer == nil {
		return SendResult{Success: false, Error: "Missing data"}
	}

	data := map[string]string{
		"name":           customer.Name,
		"invoice_number": payment.Invoice.InvoiceNumber,
		"amount":         FormatCurrency(payment.Amount),
		"paid_at":        FormatDate(payment.PaidAt),
	}
	message, ok := s.renderTemplate(TemplatePaymentReceived, data)
	if !ok {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	result := s.SendNotificationWithRetry(customer.Phone, message, SendOptions{})
	s.logDelivery(TemplatePaymentReceived, FormatPhoneNumber(customer.Phone), message, &customer.ID, result)
	return result
}

// SendServiceSuspensionNotification tells a customer their service was
// isolated for non-payment.
func (s *NotificationService) SendServiceSuspensionNotification(customerID uint) SendResult {
	return s.sendCustomerStatusNotification(TemplateServiceSuspension, customerID)
}

// SendServiceRestoredNotification tells a customer their service is back.
func (s *NotificationService) SendServiceRestoredNotification(customerID uint) SendResult {
	return s.sendCustomerStatusNotification(TemplateServiceRestored, customerID)
}

func (s *NotificationService) sendCustomerStatusNotification(templateKey string, customerID uint) SendResult {
	if !s.templates.IsEnabled(templateKey) {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	customer, err := s.billing.GetCustomerByID(customerID)
	if err != nil || customer == nil {
		return SendResult{Success: false, Error: "Missing data"}
	}

	packageName := ""
	if customer.Package != nil {
		packageName = customer.Package.Name
	}

	data := map[string]string{
		"name":         customer.Name,
		"username":     customer.Username,
		"package_name": packageName,
	}
	message, ok := s.renderTemplate(templateKey, data)
	if !ok {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	result := s.SendNotificationWithRetry(customer.Phone, message, SendOptions{})
	s.logDelivery(templateKey, FormatPhoneNumber(customer.Phone), message, &customer.ID, result)
	return result
}

// SendInstallationJobNotification broadcasts a new installation job to the
// configured technician groups.
func (s *NotificationService) SendInstallationJobNotification(jobID uint) SendResult {
	if !s.templates.IsEnabled(TemplateInstallationJob) {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	job, err := s.billing.GetInstallationJobByID(jobID)
	if err != nil || job == nil || job.Customer == nil {
		return SendResult{Success: false, Error: "Missing data"}
	}

	data := map[string]string{
		"job_code":      job.JobCode,
		"customer_name": job.Customer.Name,
		"address":       job.Customer.Address,
		"phone":         job.Customer.Phone,
		"scheduled_at":  FormatDate(job.ScheduledAt),
		"technician":    job.Technician,
		"notes":         job.Notes,
	}
	message, ok := s.renderTemplate(TemplateInstallationJob, data)
	if !ok {
		return SendResult{Success: true, Skipped: true, Reason: "Template disabled"}
	}

	broadcast := s.SendToConfiguredGroups(message)
	if broadcast.Success == 0 && broadcast.Failed > 0 {
		return SendResult{Success: false, Error: broadcast.Errors[0]}
	}
	log.Printf("Installation job %s broadcast: %d sent, %d failed", job.JobCode, broadcast.Success, broadcast.Failed)
	return SendResult{Success: true}
}

// BuildDueDateReminder renders the reminder for one unpaid invoice without
// sending it, so the scheduler can fan a day's reminders into one bulk run.
// The bool is false when the template is disabled or data is missing; the
// SendResult then carries the early outcome.
func (s *NotificationService) BuildDueDateReminder(invoiceID uint) (Notification, SendResult, bool) {
	if !s.templates.IsEnabled(TemplateDueDateReminder) {
		return Notification{}, SendResult{Success: true, Skipped: true, Reason: "Template disabled"}, false
	}

	invoice, err := s.billing.GetInvoiceByID(invoiceID)
	if err != nil || invoice == nil || invoice.Customer == nil {
		return Notification{}, SendResult{Success: false, Error: "Missing data"}, false
	}

	data := map[string]string{
		"name":           invoice.Customer.Name,
		"invoice_number": invoice.InvoiceNumber,
		"amount":         FormatCurrency(invoice.Amount),
		"due_date":       FormatDate(invoice.DueDate),
	}
	message, ok := s.renderTemplate(TemplateDueDateReminder, data)
	if !ok {
		return Notification{}, SendResult{Success: true, Skipped: true, Reason: "Template disabled"}, false
	}

	return Notification{PhoneNumber: invoice.Customer.Phone, Message: message}, SendResult{}, true
}

// SendDueDateReminder renders and delivers a single reminder.
func (s *NotificationService) SendDueDateReminder(invoiceID uint) SendResult {
	notification, early, ok := s.BuildDueDateReminder(invoiceID)
	if !ok {
		return early
	}
	result := s.SendNotificationWithRetry(notification.PhoneNumber, notification.Message, notification.Options)

	invoice, _ := s.billing.GetInvoiceByID(invoiceID)
	var customerID *uint
	if invoice != nil {
		customerID = &invoice.CustomerID
	}
	s.logDelivery(TemplateDueDateReminder, FormatPhoneNumber(notification.PhoneNumber), notification.Message, customerID, result)
	return result
}
