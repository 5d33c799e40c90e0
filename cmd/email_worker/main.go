package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/config"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
	mailtpl "github.com/oksasatya/foodgram-api/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	w := &worker{
		sender: mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase),
		logger: logger,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			switch w.handle(ctx, msg.Body) {
			case ack:
				_ = msg.Ack(false)
			case requeue:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

type worker struct {
	sender mailer.Sender
	logger *logrus.Logger
}

// handle delivers one queued job. Malformed or unrenderable jobs are
// dropped; provider failures are retried.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	msg, err := renderJob(&job)
	if err != nil {
		helpers.LogError(w.logger, "render failed", err, logrus.Fields{"template": job.Template, "to": job.To})
		return drop
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := w.sender.Send(c, msg); err != nil {
		w.logger.WithError(err).WithField("to", job.To).Warn("send failed, requeueing")
		return requeue
	}
	w.logger.WithFields(logrus.Fields{"to": job.To, "tag": msg.Tag}).Debug("email sent")
	return ack
}

// renderJob resolves subject and bodies, rendering the template when the
// job names one.
func renderJob(job *mailer.EmailJob) (mailer.Message, error) {
	helpers.NormalizeEmailJob(job)
	msg := mailer.Message{
		To:          job.To,
		Subject:     job.Subject,
		Text:        job.Text,
		HTML:        job.HTML,
		Tag:         job.Template,
		Attachments: job.Attachments,
	}
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return mailer.Message{}, err
		}
		if msg.Subject == "" {
			msg.Subject = s
		}
		msg.Text, msg.HTML = t, h
	}
	if msg.Subject == "" {
		msg.Subject = helpers.FallbackSubject(job)
	}
	return msg, nil
}
