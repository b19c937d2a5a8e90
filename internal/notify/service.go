// Package notify delivers rider notifications (journey receipts and penalty
// notices) through a Redis-backed queue drained by an SMTP worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/murasakijyuutann/transport-payment/internal/logger"
	"github.com/murasakijyuutann/transport-payment/internal/metrics"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"

	maxTries = 3

	TypeJourneyReceipt = "journey_receipt"
	TypePenaltyNotice  = "penalty_notice"
)

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Recipient struct {
	Email string
	Name  string
}

// RecipientLookup resolves the mailbox of a rider.
type RecipientLookup interface {
	Recipient(ctx context.Context, userID int64) (Recipient, error)
}

// RecipientFunc adapts a plain function to RecipientLookup.
type RecipientFunc func(ctx context.Context, userID int64) (Recipient, error)

func (f RecipientFunc) Recipient(ctx context.Context, userID int64) (Recipient, error) {
	return f(ctx, userID)
}

type Config struct {
	From     string
	FromName string
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
}

type Service struct {
	redis      *redis.Client
	recipients RecipientLookup
	cfg        Config
	retryDelay time.Duration
	send       func(Job) error
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func New(cfg Config, rdb *redis.Client, recipients RecipientLookup) *Service {
	s := &Service{
		redis:      rdb,
		recipients: recipients,
		cfg:        cfg,
		retryDelay: 5 * time.Second,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Service) Enqueue(ctx context.Context, job Job) error {
	if job.Created.IsZero() {
		job.Created = time.Now()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		metrics.RecordNotification(job.Type, "enqueue_failed")
		return fmt.Errorf("queue notification to %s: %w", job.To, err)
	}

	metrics.RecordNotification(job.Type, "queued")
	logger.Debug("notification queued", "type", job.Type, "to", job.To)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

// processNext handles at most one queued job and reports whether one was found.
func (s *Service) processNext(ctx context.Context) bool {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("notification queue unavailable", "error", err)
			time.Sleep(time.Second)
		}
		return false
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad notification payload", "error", err)
		return true
	}

	job.Tries++
	if err := s.send(job); err != nil {
		logger.Error("notification delivery failed", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			time.Sleep(s.retryDelay)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			metrics.RecordNotification(job.Type, "retried")
		} else {
			s.saveFailed(job, err)
		}
		return true
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Info("notification sent", "type", job.Type, "to", job.To)
	return true
}

func (s *Service) sendSMTP(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" && s.cfg.SMTPPass != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}

	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort
	return smtp.SendMail(addr, auth, s.cfg.From, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
	metrics.RecordNotification(job.Type, "failed")
	logger.Error("notification moved to failed queue", "to", job.To, "tries", job.Tries)
}

// QueueLength reports the pending jobs and mirrors the value on the gauge.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0
	}
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

// Ping checks the queue backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}
