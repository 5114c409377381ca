// internal/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/wealthyelephant-backend/internal/metrics"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
)

// SendResult describes a delivered email.
type SendResult struct {
	To      string
	Subject string
	SentAt  time.Time
}

// Dispatcher sends the confirmation and alert emails for form submissions.
// Delivery is best effort: nothing here returns an error to the caller.
type Dispatcher struct {
	Mailer     Mailer
	From       string
	AdminEmail string
	Timeout    time.Duration
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
}

func NewDispatcher(mailer Mailer, fromAddress, adminEmail string, timeout time.Duration, m *metrics.Metrics, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		Mailer:     mailer,
		From:       fmt.Sprintf("%s <%s>", BrandName, fromAddress),
		AdminEmail: adminEmail,
		Timeout:    timeout,
		Metrics:    m,
		Log:        log,
	}
}

// SendEmail delivers one message and returns nil on any failure.
func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, html string) *SendResult {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	err := d.Mailer.Send(ctx, Message{From: d.From, To: to, Subject: subject, HTML: html})
	if d.Metrics != nil {
		d.Metrics.RecordEmail(err)
	}
	if err != nil {
		d.Log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("❌ Email sending error")
		return nil
	}
	return &SendResult{To: to, Subject: subject, SentAt: time.Now()}
}

func (d *Dispatcher) deliver(ctx context.Context, to string, e Email) *SendResult {
	html, err := Render(e.Page)
	if err != nil {
		d.Log.Error().Err(err).Str("subject", e.Subject).Msg("❌ Email template error")
		return nil
	}
	return d.SendEmail(ctx, to, e.Subject, html)
}

// pair sends the user confirmation and the admin alert concurrently and
// waits for both.
func (d *Dispatcher) pair(ctx context.Context, userTo string, user, admin Email) {
	var g errgroup.Group
	g.Go(func() error {
		d.deliver(ctx, userTo, user)
		return nil
	})
	g.Go(func() error {
		d.deliver(ctx, d.AdminEmail, admin)
		return nil
	})
	_ = g.Wait()
}

func (d *Dispatcher) ContactInquiry(ctx context.Context, c *model.ContactInquiry) {
	d.pair(ctx, c.Email, contactUser(c.Name), contactAdmin(c))
}

func (d *Dispatcher) KlinRequest(ctx context.Context, r *model.KlinRequest) {
	d.pair(ctx, r.Email, klinRequestUser(r.Name), klinRequestAdmin(r))
}

func (d *Dispatcher) KlinIntelligence(ctx context.Context, c *model.KlinIntelligenceCheck) {
	d.pair(ctx, c.Email, klinIntelligenceUser(c.Name), klinIntelligenceAdmin(c))
}

func (d *Dispatcher) KlinPartnership(ctx context.Context, p *model.KlinPartnership) {
	d.pair(ctx, p.Email, klinPartnershipUser(p.ContactPerson), klinPartnershipAdmin(p))
}

func (d *Dispatcher) KaizenProject(ctx context.Context, p *model.KaizenProject) {
	d.pair(ctx, p.Email, kaizenProjectUser(p.Name), kaizenProjectAdmin(p))
}

func (d *Dispatcher) BuildPlanner(ctx context.Context, b *model.BuildPlannerSubmission) {
	d.pair(ctx, b.Email, buildPlannerUser(b), buildPlannerAdmin(b))
}

// NewsletterWelcome only goes to the subscriber.
func (d *Dispatcher) NewsletterWelcome(ctx context.Context, email, name string) {
	d.deliver(ctx, email, newsletterWelcome(name))
}
