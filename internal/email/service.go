package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"washitek/internal/logger"
	"washitek/internal/metrics"
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, "emails", data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, "emails").Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)
		metrics.RecordEmail("lifecycle", "failed")

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), "emails", data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after 3 attempts", job.To)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail("lifecycle", "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), "emails:failed", data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, "emails").Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingAccepted(ctx context.Context, email, name, bookingRef, service string) error {
	subject := "Booking Accepted - " + bookingRef
	body := fmt.Sprintf(`Hi %s,

Good news! Your laundry booking has been accepted.

Booking: %s
Service: %s

We will pick up your laundry on the scheduled date.

- Washitek Team`, name, bookingRef, service)

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SendBookingRejected(ctx context.Context, email, name, bookingRef, reason string) error {
	subject := "Booking Rejected - " + bookingRef
	body := fmt.Sprintf(`Hi %s,

Unfortunately your booking %s could not be accepted.

Reason: %s

You are welcome to submit a new booking at any time.

- Washitek Team`, name, bookingRef, reason)

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SendBookingFinalized(ctx context.Context, email, name, bookingRef string, amountPaise int64) error {
	subject := "Payment Due - " + bookingRef
	body := fmt.Sprintf(`Hi %s,

Your laundry for booking %s is done!

Amount due: Rs %.2f

Please pay online, in cash, or with your Washitek credit.

- Washitek Team`, name, bookingRef, float64(amountPaise)/100)

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SendPaymentReceived(ctx context.Context, email, name, bookingRef string, amountPaise int64) error {
	subject := "Payment Received - " + bookingRef
	body := fmt.Sprintf(`Hi %s,

We have received your payment of Rs %.2f for booking %s.

Thank you for choosing Washitek!

- Washitek Team`, name, float64(amountPaise)/100, bookingRef)

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SendPlanApproved(ctx context.Context, email, name, planName string) error {
	subject := "Plan Activated - " + planName
	body := fmt.Sprintf(`Hi %s,

Your membership plan "%s" has been approved and is now active.

Enjoy your plan benefits on your next booking!

- Washitek Team`, name, planName)

	return s.Send(ctx, email, name, subject, body)
}

func (s *Service) SendPlanRejected(ctx context.Context, email, name, planName, reason string) error {
	subject := "Plan Request Rejected - " + planName
	body := fmt.Sprintf(`Hi %s,

Your request for the "%s" plan was not approved.

Reason: %s

- Washitek Team`, name, planName, reason)

	return s.Send(ctx, email, name, subject, body)
}
