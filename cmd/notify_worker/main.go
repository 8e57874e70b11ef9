package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/linkfolio/linkfolio/config"
	"github.com/linkfolio/linkfolio/internal/notify"
	"github.com/linkfolio/linkfolio/pkg/mailer"
	mailtpl "github.com/linkfolio/linkfolio/pkg/mailer/templates"
)

// The worker consumes notification events from RabbitMQ, renders the
// universal template for the event kind, and delivers through Mailgun.
// Render failures are dead-lettered (rejected without requeue); delivery
// failures are requeued.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if !cfg.NotifySendEnabled {
		log.Println("NOTIFY_SEND_ENABLED=false; notify worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotifyQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQNotifyQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQNotifyQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var ev notify.Event
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if ev.RecipientAddress == "" {
				log.Printf("event %s has no recipient", ev.Kind)
				_ = msg.Nack(false, false)
				continue
			}

			data := templateData(cfg, ev)
			subject, text, html, rerr := mailtpl.Render("universal", data)
			if rerr != nil {
				log.Printf("render %s failed: %v", ev.Kind, rerr)
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, ev.RecipientAddress, subject, text, html); err != nil {
				cancel()
				log.Printf("send %s to %s failed: %v", ev.Kind, ev.RecipientAddress, err)
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("notify worker listening on queue=%s", cfg.RabbitMQNotifyQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func templateData(cfg *config.Config, ev notify.Event) mailtpl.NotificationData {
	data := mailtpl.NotificationData{
		RecipientEmail: ev.RecipientAddress,
		Kind:           string(ev.Kind),
		AppName:        cfg.AppName,
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
	}
	str := func(key string) string {
		if v, ok := ev.TemplateData[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	data.RecipientName = str("RecipientName")
	data.FriendName = str("FriendName")
	data.FriendUsername = str("Username")
	data.PageURL = str("PageURL")
	data.ResetURL = str("ResetURL")
	return data
}
