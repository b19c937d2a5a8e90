package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/murasakijyuutann/transport-payment/internal/logger"
	"github.com/murasakijyuutann/transport-payment/internal/metrics"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

func newTestService(rdb *redis.Client, send func(Job) error) *Service {
	s := New(Config{
		From:     "noreply@transit.example",
		FromName: "Transit Pay",
		SMTPHost: "smtp.test.com",
		SMTPPort: "587",
	}, rdb, RecipientFunc(func(ctx context.Context, userID int64) (Recipient, error) {
		if userID == 404 {
			return Recipient{}, errors.New("user not found")
		}
		return Recipient{Email: "rider@example.com", Name: "Rider"}, nil
	}))
	s.retryDelay = 0
	if send != nil {
		s.send = send
	}
	return s
}

func encode(t *testing.T, job Job) string {
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

func TestEnqueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db, nil)
	err := svc.Enqueue(context.Background(), Job{Type: TypeJourneyReceipt, To: "rider@example.com", Subject: "Hi"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetErr(errors.New("connection refused"))

	svc := newTestService(db, nil)
	err := svc.Enqueue(context.Background(), Job{Type: TypeJourneyReceipt, To: "rider@example.com"})
	assert.Error(t, err)
}

func TestSendJourneyReceipt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db, nil)
	err := svc.SendJourneyReceipt(context.Background(), JourneyReceipt{
		UserID:       1,
		JourneyID:    10,
		EntryStation: "Central Station",
		ExitStation:  "Uptown",
		Zones:        2,
		Fare:         decimal.RequireFromString("5.50"),
		Charged:      decimal.RequireFromString("2.00"),
		Discount:     decimal.RequireFromString("3.50"),
		Balance:      decimal.RequireFromString("18.00"),
		TapOutTime:   time.Now(),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendPenaltyNoticeUnknownRecipient(t *testing.T) {
	db, mock := redismock.NewClientMock()

	svc := newTestService(db, nil)
	err := svc.SendPenaltyNotice(context.Background(), PenaltyNotice{UserID: 404})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextDelivers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	job := Job{Type: TypeJourneyReceipt, To: "rider@example.com", Subject: "Receipt"}
	mock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, encode(t, job)})

	var delivered []Job
	svc := newTestService(db, func(j Job) error {
		delivered = append(delivered, j)
		return nil
	})

	assert.True(t, svc.processNext(context.Background()))
	require.Len(t, delivered, 1)
	assert.Equal(t, 1, delivered[0].Tries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextRequeuesOnFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	job := Job{Type: TypePenaltyNotice, To: "rider@example.com"}
	mock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, encode(t, job)})
	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db, func(Job) error { return errors.New("smtp down") })

	assert.True(t, svc.processNext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextMovesToFailedAfterMaxTries(t *testing.T) {
	db, mock := redismock.NewClientMock()
	job := Job{Type: TypePenaltyNotice, To: "rider@example.com", Tries: maxTries - 1}
	mock.ExpectBRPop(2*time.Second, queueKey).SetVal([]string{queueKey, encode(t, job)})
	mock.Regexp().ExpectLPush(failedKey, `.*`).SetVal(1)

	svc := newTestService(db, func(Job) error { return errors.New("smtp down") })

	assert.True(t, svc.processNext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNextEmptyQueue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectBRPop(2*time.Second, queueKey).RedisNil()

	svc := newTestService(db, nil)
	assert.False(t, svc.processNext(context.Background()))
}

func TestPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	svc := newTestService(db, nil)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.Error(t, svc.Ping(context.Background()))
}

func TestQueueLengthUpdatesGauge(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen(queueKey).SetVal(4)

	svc := newTestService(db, nil)
	assert.Equal(t, int64(4), svc.QueueLength(context.Background()))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.NotificationQueueLength))
}

func TestStartStopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	svc := newTestService(db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestReceiptJob(t *testing.T) {
	job := receiptJob(Recipient{Email: "rider@example.com", Name: "Rider"}, JourneyReceipt{
		EntryStation:    "Central Station",
		ExitStation:     "Uptown",
		Zones:           2,
		Fare:            decimal.RequireFromString("5.5"),
		Discount:        decimal.RequireFromString("5.5"),
		Charged:         decimal.Zero,
		Balance:         decimal.RequireFromString("12"),
		DailyCapReached: true,
	})

	assert.Equal(t, TypeJourneyReceipt, job.Type)
	assert.Equal(t, "rider@example.com", job.To)
	assert.Contains(t, job.Body, "Journey from Central Station to Uptown")
	assert.Contains(t, job.Body, "Charged: 0.00")
	assert.Contains(t, job.Body, "fare cap")
}

func TestPenaltyJob(t *testing.T) {
	job := penaltyJob(Recipient{Email: "rider@example.com", Name: "Rider"}, PenaltyNotice{
		EntryStation: "Airport",
		Penalty:      decimal.RequireFromString("5"),
		Balance:      decimal.RequireFromString("1.25"),
	})

	assert.Equal(t, TypePenaltyNotice, job.Type)
	assert.Contains(t, job.Body, "journey from Airport")
	assert.Contains(t, job.Body, "charge of 5.00")
}
