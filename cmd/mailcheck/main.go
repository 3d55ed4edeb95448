// cmd/mailcheck/main.go sends one test message through the configured
// provider, the same way order notifications are delivered.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/bookstore-backend/internal/config"
	"github.com/your-org/bookstore-backend/internal/domain/notification"
	"github.com/your-org/bookstore-backend/internal/pkg/email"
	"github.com/your-org/bookstore-backend/internal/pkg/logger"
)

func main() {
	to := flag.String("to", "", "recipient address")
	dial := flag.Bool("dial", false, "only check the SMTP connection")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.Logging)

	emailService := email.NewEmailService(cfg.Email, log)

	if *dial {
		if err := emailService.TestSMTPConnection(); err != nil {
			log.WithError(err).Fatal("SMTP connection failed")
		}
		log.WithField("host", cfg.Email.SMTPHost).Info("SMTP connection ok")
		return
	}

	if *to == "" {
		log.Error("usage: mailcheck -to <address> [-dial]")
		os.Exit(2)
	}

	dispatcher := notification.NewDispatcher(emailService, cfg.Notification.Timeout, log)
	result := dispatcher.Send(context.Background(), notification.Message{
		To:      *to,
		Subject: "Test email from " + cfg.App.Name,
		HTML:    "<h1>Success!</h1><p>Outgoing mail is working.</p>",
		Type:    email.EmailTypeTest,
	})
	if !result.Success {
		log.WithField("error", result.Error).Fatal("send failed")
	}

	log.WithFields(logrus.Fields{
		"provider": emailService.Provider(),
		"id":       result.ID,
	}).Info("email sent")
}
