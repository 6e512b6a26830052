package service

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/forkful/forkful-backend/internal/models"
)

// Notifier reports social events to the outside world. Every call is
// fire-and-forget: delivery failure must never fail or roll back the
// mutation that triggered it. A nil author means the recipe was created in
// anonymous-authoring mode and there is nobody to notify.
type Notifier interface {
	RecipeRated(recipe *models.Recipe, author, rater *models.User, score int) error
	NewFollower(followee, follower *models.User) error
	NewComment(recipe *models.Recipe, author, commenter *models.User, text string) error
	RecipeReported(recipe *models.Recipe, reason string) error
}

// fireAndForget runs a notification off the mutation path, logging and
// suppressing any delivery error.
func fireAndForget(logger *zap.Logger, event string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			logger.Warn("notification delivery failed",
				zap.String("event", event),
				zap.Error(err))
		}
	}()
}

// EmailNotifier delivers event notifications over SMTP.
type EmailNotifier struct {
	dialer     *gomail.Dialer
	fromEmail  string
	fromName   string
	adminEmail string
}

// EmailConfig carries SMTP settings for the notifier.
type EmailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	AdminEmail string
}

func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		adminEmail: cfg.AdminEmail,
	}
}

func (n *EmailNotifier) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.fromEmail, n.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return n.dialer.DialAndSend(m)
}

func (n *EmailNotifier) RecipeRated(recipe *models.Recipe, author, rater *models.User, score int) error {
	if author == nil {
		return nil
	}
	subject := fmt.Sprintf("Your recipe %q received a new rating", recipe.Title)
	body := fmt.Sprintf("%s rated %q %d out of 5.", rater.Name, recipe.Title, score)
	return n.send(author.Email, subject, body)
}

func (n *EmailNotifier) NewFollower(followee, follower *models.User) error {
	subject := "You have a new follower"
	body := fmt.Sprintf("%s is now following you.", follower.Name)
	return n.send(followee.Email, subject, body)
}

func (n *EmailNotifier) NewComment(recipe *models.Recipe, author, commenter *models.User, text string) error {
	if author == nil {
		return nil
	}
	subject := fmt.Sprintf("New comment on %q", recipe.Title)
	body := fmt.Sprintf("%s commented: %s", commenter.Name, text)
	return n.send(author.Email, subject, body)
}

func (n *EmailNotifier) RecipeReported(recipe *models.Recipe, reason string) error {
	subject := fmt.Sprintf("Recipe %q was reported", recipe.Title)
	body := fmt.Sprintf("Report count is now %d. Reason: %s", recipe.ReportCount, reason)
	return n.send(n.adminEmail, subject, body)
}

// NoopNotifier discards all events; used in tests and when SMTP is not
// configured.
type NoopNotifier struct{}

func (NoopNotifier) RecipeRated(*models.Recipe, *models.User, *models.User, int) error {
	return nil
}

func (NoopNotifier) NewFollower(*models.User, *models.User) error { return nil }

func (NoopNotifier) NewComment(*models.Recipe, *models.User, *models.User, string) error {
	return nil
}

func (NoopNotifier) RecipeReported(*models.Recipe, string) error { return nil }
