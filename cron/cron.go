package cron

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/metrics"
	"github.com/meinhoongagan/nhs-staffing/models"
	"github.com/meinhoongagan/nhs-staffing/utils"
)

// ExpiryReport summarises one notifier run.
type ExpiryReport struct {
	Found  int
	Sent   int
	Failed int
}

// NotifyExpiringDocuments mails each owning agency about documents expiring within the
// next days days. Delivery failures are logged and counted but never returned; only a
// failure to read the documents is.
func NotifyExpiringDocuments(ctx context.Context, db *gorm.DB, mailer utils.Mailer, days int) (ExpiryReport, error) {
	log := logger.WithModule("expiry-notifier")

	docs, err := models.ExpiringDocuments(ctx, db, models.Today(), days)
	if err != nil {
		return ExpiryReport{}, err
	}

	report := ExpiryReport{Found: len(docs)}
	var failures error
	for i := range docs {
		doc := &docs[i]
		to := doc.Nurse.Agency.ContactEmail
		if to == "" {
			failures = multierr.Append(failures, fmt.Errorf("document %d: agency has no contact email", doc.ID))
			report.Failed++
			continue
		}

		subject, body := expiryMessage(doc)
		if err := mailer.Send(ctx, to, subject, body); err != nil {
			failures = multierr.Append(failures, fmt.Errorf("document %d: %w", doc.ID, err))
			report.Failed++
			metrics.ExpiryNotifications.WithLabelValues("failed").Inc()
			continue
		}
		report.Sent++
		metrics.ExpiryNotifications.WithLabelValues("sent").Inc()
	}

	if failures != nil {
		log.Warn("some expiry notifications were not delivered",
			zap.Int("failed", report.Failed),
			zap.Errors("errors", multierr.Errors(failures)),
		)
	}
	log.Info("expiry check finished",
		zap.Int("days", days),
		zap.Int("found", report.Found),
		zap.Int("sent", report.Sent),
	)
	return report, nil
}

func expiryMessage(doc *models.NurseDocument) (string, string) {
	subject := fmt.Sprintf("Document expiring: %s for %s", doc.DocumentType.Label(), doc.Nurse.FullName)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The following document is due to expire and should be renewed.</p>
		<ul>
			<li><strong>Nurse:</strong> %s (%s)</li>
			<li><strong>Document:</strong> %s</li>
			<li><strong>Expiry date:</strong> %s</li>
		</ul>
		<p>NHS Staffing</p>
	`,
		html.EscapeString(doc.Nurse.Agency.Name),
		html.EscapeString(doc.Nurse.FullName),
		html.EscapeString(doc.Nurse.RegistrationNumber),
		doc.DocumentType.Label(),
		doc.ExpiryDate.Format("2 January 2006"),
	)
	return subject, body
}

// Start schedules the expiry notifier. The returned scheduler is already running; Stop
// it on shutdown.
func Start(db *gorm.DB, mailer utils.Mailer, schedule string, days int) (*cron.Cron, error) {
	log := logger.WithModule("cron")

	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := NotifyExpiringDocuments(ctx, db, mailer, days); err != nil {
			log.Error("expiry check failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	c.Start()
	log.Info("expiry notifier scheduled", zap.String("schedule", schedule), zap.Int("days", days))
	return c, nil
}
