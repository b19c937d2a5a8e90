package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const timeLayout = "Jan 2, 2006 at 3:04 PM"

type JourneyReceipt struct {
	UserID          int64
	JourneyID       int64
	EntryStation    string
	ExitStation     string
	Zones           int
	Fare            decimal.Decimal
	Discount        decimal.Decimal
	Charged         decimal.Decimal
	Balance         decimal.Decimal
	TapOutTime      time.Time
	DailyCapReached bool
}

type PenaltyNotice struct {
	UserID       int64
	JourneyID    int64
	EntryStation string
	TapInTime    time.Time
	Penalty      decimal.Decimal
	Balance      decimal.Decimal
}

func (s *Service) SendJourneyReceipt(ctx context.Context, r JourneyReceipt) error {
	to, err := s.recipients.Recipient(ctx, r.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	return s.Enqueue(ctx, receiptJob(to, r))
}

func (s *Service) SendPenaltyNotice(ctx context.Context, n PenaltyNotice) error {
	to, err := s.recipients.Recipient(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	return s.Enqueue(ctx, penaltyJob(to, n))
}

func receiptJob(to Recipient, r JourneyReceipt) Job {
	body := fmt.Sprintf(`Hi %s,

Journey from %s to %s
Completed: %s
Zones: %d
Fare: %s
Daily cap discount: %s
Charged: %s
Balance: %s
`, to.Name, r.EntryStation, r.ExitStation, r.TapOutTime.Format(timeLayout), r.Zones,
		r.Fare.StringFixed(2), r.Discount.StringFixed(2), r.Charged.StringFixed(2), r.Balance.StringFixed(2))
	if r.DailyCapReached {
		body += "\nYou have reached today's fare cap. Further journeys today are free.\n"
	}

	return Job{
		Type:    TypeJourneyReceipt,
		To:      to.Email,
		Name:    to.Name,
		Subject: fmt.Sprintf("Journey receipt: %s to %s", r.EntryStation, r.ExitStation),
		Body:    body,
	}
}

func penaltyJob(to Recipient, n PenaltyNotice) Job {
	body := fmt.Sprintf(`Hi %s,

No tap-out was recorded for your journey from %s started %s.
An incomplete journey charge of %s has been applied.
Balance: %s
`, to.Name, n.EntryStation, n.TapInTime.Format(timeLayout), n.Penalty.StringFixed(2), n.Balance.StringFixed(2))

	return Job{
		Type:    TypePenaltyNotice,
		To:      to.Email,
		Name:    to.Name,
		Subject: "Incomplete journey charge",
		Body:    body,
	}
}
