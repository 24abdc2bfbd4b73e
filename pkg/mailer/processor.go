package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-user-service/pkg/mailer/templates"
)

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Retry
)

var ErrInvalidJob = errors.New("invalid email job")

// Processor turns a queued job into a sent email.
type Processor struct {
	Sender   Sender
	Branding templates.Branding
	Logger   *logrus.Logger
}

func NewProcessor(sender Sender, branding templates.Branding, logger *logrus.Logger) *Processor {
	return &Processor{Sender: sender, Branding: branding, Logger: logger}
}

// Handle decodes, renders and sends one message body. Undecodable or
// unrenderable jobs are dropped; only send failures are retried.
func (p *Processor) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.Logger.WithError(err).Warn("bad email job payload")
		return Drop
	}
	subject, text, html, err := p.render(job)
	if err != nil {
		p.Logger.WithError(err).WithField("template", job.Template).Warn("render email failed")
		return Drop
	}
	if err := p.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		p.Logger.WithError(err).WithField("to", job.To).Error("send email failed")
		return Retry
	}
	p.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}

func (p *Processor) render(job EmailJob) (string, string, string, error) {
	if !job.Valid() {
		return "", "", "", ErrInvalidJob
	}
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	subject, text, html, err := templates.Render(job.Template, templates.ApplyBranding(job.Data, p.Branding))
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
	}
	return subject, text, html, nil
}
