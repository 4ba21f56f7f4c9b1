package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/models"
)

// MenuUpdatedEvent is published whenever a caterer publishes or extends
// a menu. The notification worker fans it out to users by email.
type MenuUpdatedEvent struct {
	Date  time.Time
	Meals []models.Meal
}

// MailSender sends a single email. Satisfied by gomail's Dialer in
// production and by a mock in tests.
type MailSender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers mail over SMTP using gomail
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender from the application config
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.MailSender,
	}
}

// Send delivers one email message
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// NotificationService decouples menu-update notification delivery from
// the request path. Publishing never blocks: if the buffer is full the
// event is dropped, and delivery failures are logged, not surfaced.
type NotificationService struct {
	db     *gorm.DB
	sender MailSender
	events chan MenuUpdatedEvent
	done   chan struct{}
}

var notificationServiceInstance *NotificationService

// InitNotificationService starts the notification worker
func InitNotificationService(db *gorm.DB, sender MailSender) *NotificationService {
	svc := &NotificationService{
		db:     db,
		sender: sender,
		events: make(chan MenuUpdatedEvent, 16),
		done:   make(chan struct{}),
	}
	go svc.run()
	notificationServiceInstance = svc
	return svc
}

// GetNotificationService returns the running notification service, which
// may be nil when notifications are not configured
func GetNotificationService() *NotificationService {
	return notificationServiceInstance
}

// SetNotificationService sets the service instance (primarily for testing)
func SetNotificationService(svc *NotificationService) {
	notificationServiceInstance = svc
}

// PublishMenuUpdated hands the event to the worker without blocking
func (n *NotificationService) PublishMenuUpdated(event MenuUpdatedEvent) {
	select {
	case n.events <- event:
	default:
		log.Printf("notification buffer full, dropping menu update for %s", event.Date.Format("2006-01-02"))
	}
}

// Stop shuts the worker down after it drains pending events
func (n *NotificationService) Stop() {
	close(n.events)
	<-n.done
}

func (n *NotificationService) run() {
	defer close(n.done)
	for event := range n.events {
		n.fanOut(event)
	}
}

// fanOut emails the updated menu to every active user
func (n *NotificationService) fanOut(event MenuUpdatedEvent) {
	var users []models.User
	if err := n.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		log.Printf("notification worker: failed to load users: %v", err)
		return
	}

	subject := fmt.Sprintf("Menu updates for %s", event.Date.Format("02-01-2006"))
	body := renderMenuBody(event)
	for _, user := range users {
		if err := n.sender.Send(user.Email, subject, body); err != nil {
			log.Printf("notification worker: %v", err)
		}
	}
}

func renderMenuBody(event MenuUpdatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The menu for %s has been updated:\n\n", event.Date.Format("02-01-2006"))
	for _, meal := range event.Meals {
		fmt.Fprintf(&b, "  - %s ($%.2f): %s\n", meal.Name, meal.Price, meal.Description)
	}
	return b.String()
}
