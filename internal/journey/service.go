// Package journey runs the tap-in/tap-out state machine. Every transition
// happens inside one database transaction that first locks the card row,
// so concurrent taps on the same card are applied one after another. The
// tap-out additionally locks the rider's wallet before reading daily spend,
// which keeps the daily cap exact across cards of the same rider.
package journey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/db"
	"github.com/murasakijyuutann/transport-payment/internal/fare"
	"github.com/murasakijyuutann/transport-payment/internal/ledger"
	"github.com/murasakijyuutann/transport-payment/internal/logger"
	"github.com/murasakijyuutann/transport-payment/internal/metrics"
	"github.com/murasakijyuutann/transport-payment/internal/notify"
	"github.com/murasakijyuutann/transport-payment/internal/station"
)

type Service interface {
	TapIn(ctx context.Context, req TapRequest) (*TapInResult, error)
	TapOut(ctx context.Context, req TapRequest) (*TapOutResult, error)
	SweepIncompleteJourneys(ctx context.Context) (int, error)
	ActiveJourney(ctx context.Context, cardNumber string) (*View, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]View, error)
}

type CardStore interface {
	FindByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error)
	LockByNumber(ctx context.Context, q db.Querier, cardNumber string) (*card.Card, error)
	LockByID(ctx context.Context, q db.Querier, id int64) (*card.Card, error)
}

type StationStore interface {
	FindByCode(ctx context.Context, q db.Querier, code string) (*station.Station, error)
	FindByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*station.Station, error)
}

type Ledger interface {
	GetOrCreateWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error)
	LockWallet(ctx context.Context, q db.Querier, userID int64) (*ledger.Wallet, error)
	Debit(ctx context.Context, q db.Querier, userID int64, amount decimal.Decimal, entry ledger.Entry) (*ledger.Transaction, error)
	DailySpend(ctx context.Context, q db.Querier, userID int64, day time.Time) (decimal.Decimal, error)
}

// Notifier is told about completed and penalised journeys after commit.
// Failures are logged and never undo the journey.
type Notifier interface {
	SendJourneyReceipt(ctx context.Context, r notify.JourneyReceipt) error
	SendPenaltyNotice(ctx context.Context, n notify.PenaltyNotice) error
}

type Config struct {
	MaxDuration time.Duration
}

type Deps struct {
	Tx         db.Transactor
	Journeys   Repository
	Cards      CardStore
	Stations   StationStore
	Ledger     Ledger
	Calculator *fare.Calculator
	Notifier   Notifier
	Now        func() time.Time
}

type service struct {
	tx       db.Transactor
	journeys Repository
	cards    CardStore
	stations StationStore
	ledger   Ledger
	calc     *fare.Calculator
	notifier Notifier
	now      func() time.Time
	cfg      Config
}

func NewService(deps Deps, cfg Config) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:       deps.Tx,
		journeys: deps.Journeys,
		cards:    deps.Cards,
		stations: deps.Stations,
		ledger:   deps.Ledger,
		calc:     deps.Calculator,
		notifier: deps.Notifier,
		now:      now,
		cfg:      cfg,
	}
}

// resolveTapTime returns the reader's timestamp for the journey record. It
// never decides pricing: the daily-spend day and the ledger entry always use
// the server clock.
func resolveTapTime(req TapRequest, now time.Time) (time.Time, error) {
	if req.TapTime == nil || req.TapTime.IsZero() {
		return now, nil
	}
	if req.TapTime.After(now) {
		return time.Time{}, ErrTapTimeInFuture
	}
	return *req.TapTime, nil
}

func (s *service) TapIn(ctx context.Context, req TapRequest) (*TapInResult, error) {
	tapTime, err := resolveTapTime(req, s.now())
	if err != nil {
		metrics.RecordTap("in", outcome(err))
		return nil, err
	}

	var result *TapInResult
	err = s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.cards.LockByNumber(ctx, q, req.CardNumber)
		if err != nil {
			return err
		}
		if !c.Active() {
			return ErrCardNotActive
		}

		st, err := s.stations.FindByCode(ctx, q, req.StationCode)
		if err != nil {
			return err
		}
		if !st.Operational() {
			return ErrStationNotOperational
		}
		if st.ZoneNumber <= 0 {
			return ErrInvalidStationZone
		}

		active, err := s.journeys.FindActiveByCard(ctx, q, c.ID)
		switch {
		case err == nil:
			return s.activeJourneyError(ctx, q, active)
		case !errors.Is(err, ErrNoActiveJourney):
			return err
		}

		wallet, err := s.ledger.GetOrCreateWallet(ctx, q, c.UserID)
		if err != nil {
			return err
		}
		if !wallet.Balance.IsPositive() {
			return ErrInsufficientBalance
		}

		j := &Journey{
			UserID:         c.UserID,
			CardID:         c.ID,
			EntryStationID: st.ID,
			TapInTime:      tapTime,
		}
		if err := s.journeys.Create(ctx, q, j); err != nil {
			return err
		}

		result = &TapInResult{
			JourneyID:      j.ID,
			Status:         j.Status,
			StationName:    st.Name,
			StationCode:    st.StationCode,
			TapTime:        tapTime,
			CurrentBalance: wallet.Balance,
			Message:        "Tap-in successful at " + st.Name,
		}
		return nil
	})
	if err != nil {
		metrics.RecordTap("in", outcome(err))
		logger.Warn("tap-in rejected", "card", req.CardNumber, "station", req.StationCode, "error", err)
		return nil, err
	}

	metrics.RecordTap("in", "ok")
	logger.Info("journey started", "journey_id", result.JourneyID, "station", result.StationCode)
	return result, nil
}

func (s *service) activeJourneyError(ctx context.Context, q db.Querier, active *Journey) error {
	stations, err := s.stations.FindByIDs(ctx, q, []int64{active.EntryStationID})
	if err != nil {
		return err
	}
	if st, ok := stations[active.EntryStationID]; ok {
		return fmt.Errorf("%w: please tap out at %s", ErrActiveJourneyExists, st.Name)
	}
	return ErrActiveJourneyExists
}

func (s *service) TapOut(ctx context.Context, req TapRequest) (*TapOutResult, error) {
	now := s.now()
	tapOutTime, err := resolveTapTime(req, now)
	if err != nil {
		metrics.RecordTap("out", outcome(err))
		return nil, err
	}

	var (
		result  *TapOutResult
		receipt notify.JourneyReceipt
	)
	err = s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.cards.LockByNumber(ctx, q, req.CardNumber)
		if err != nil {
			return err
		}

		j, err := s.journeys.FindActiveByCard(ctx, q, c.ID)
		if err != nil {
			return err
		}
		if tapOutTime.Before(j.TapInTime) {
			return ErrTapOutBeforeTapIn
		}

		exit, err := s.stations.FindByCode(ctx, q, req.StationCode)
		if err != nil {
			return err
		}
		stations, err := s.stations.FindByIDs(ctx, q, []int64{j.EntryStationID})
		if err != nil {
			return err
		}
		entry, ok := stations[j.EntryStationID]
		if !ok {
			return ErrStationNotFound
		}
		if entry.ZoneNumber <= 0 || exit.ZoneNumber <= 0 {
			return ErrInvalidStationZone
		}

		zones := s.calc.ZonesTransited(entry.ZoneNumber, exit.ZoneNumber)
		baseFare := s.calc.BaseFare(zones)

		// Held until commit so a concurrent tap-out of the same rider
		// sees this debit in its daily spend.
		if _, err := s.ledger.LockWallet(ctx, q, j.UserID); err != nil {
			return err
		}
		spent, err := s.ledger.DailySpend(ctx, q, j.UserID, now)
		if err != nil {
			return err
		}
		charged, discount := s.calc.ApplyDailyCap(spent, baseFare)

		journeyID, cardID := j.ID, c.ID
		txn, err := s.ledger.Debit(ctx, q, j.UserID, charged, ledger.Entry{
			Type:        ledger.TypeJourneyPayment,
			JourneyID:   &journeyID,
			CardID:      &cardID,
			Description: fmt.Sprintf("Journey from %s to %s", entry.Name, exit.Name),
			At:          now,
		})
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return fmt.Errorf("%w: required %s", ErrInsufficientBalance, charged.StringFixed(2))
		}
		if err != nil {
			return err
		}

		exitID := exit.ID
		j.ExitStationID = &exitID
		j.TapOutTime = &tapOutTime
		j.ZonesTransited = &zones
		j.FareAmount = baseFare
		j.DiscountAmount = discount
		j.FinalAmount = charged
		if err := s.journeys.Complete(ctx, q, j); err != nil {
			return err
		}

		dailySpend := spent.Add(charged)
		result = &TapOutResult{
			JourneyID:        j.ID,
			Status:           j.Status,
			EntryStationName: entry.Name,
			ExitStationName:  exit.Name,
			StationCode:      exit.StationCode,
			TapTime:          tapOutTime,
			FareAmount:       charged,
			DiscountAmount:   discount,
			ZonesTransited:   zones,
			DurationMinutes:  j.DurationMinutes(),
			CurrentBalance:   txn.BalanceAfter,
			DailySpend:       dailySpend,
			DailyCapReached:  s.calc.CapReached(dailySpend),
			Message:          "Tap-out successful. Journey completed.",
		}
		receipt = notify.JourneyReceipt{
			UserID:          j.UserID,
			JourneyID:       j.ID,
			EntryStation:    entry.Name,
			ExitStation:     exit.Name,
			Zones:           zones,
			Fare:            baseFare,
			Discount:        discount,
			Charged:         charged,
			Balance:         txn.BalanceAfter,
			TapOutTime:      tapOutTime,
			DailyCapReached: result.DailyCapReached,
		}
		return nil
	})
	if err != nil {
		metrics.RecordTap("out", outcome(err))
		logger.Warn("tap-out rejected", "card", req.CardNumber, "station", req.StationCode, "error", err)
		return nil, err
	}

	metrics.RecordTap("out", "ok")
	metrics.RecordFare(result.FareAmount.InexactFloat64(), result.DiscountAmount.InexactFloat64(),
		result.ZonesTransited, result.DailyCapReached)
	logger.Info("journey completed",
		"journey_id", result.JourneyID,
		"fare", result.FareAmount.StringFixed(2),
		"zones", result.ZonesTransited,
		"duration_min", result.DurationMinutes,
	)

	if s.notifier != nil {
		if err := s.notifier.SendJourneyReceipt(ctx, receipt); err != nil {
			logger.Warn("journey receipt not queued", "journey_id", result.JourneyID, "error", err)
		}
	}
	return result, nil
}

// SweepIncompleteJourneys closes journeys left open longer than the maximum
// duration, charging the incomplete-journey penalty. Each journey is settled
// in its own transaction; one that fails is logged and stays IN_PROGRESS for
// the next run. The returned count covers resolved journeys only.
func (s *service) SweepIncompleteJourneys(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.cfg.MaxDuration)

	var stale []Journey
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		stale, err = s.journeys.FindStaleInProgress(ctx, q, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("find stale journeys: %w", err)
	}

	processed := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		notice, err := s.resolveIncomplete(ctx, stale[i].ID, stale[i].CardID, now)
		switch {
		case errors.Is(err, ErrJourneyNotInProgress):
			metrics.RecordSweep("skipped")
			continue
		case err != nil:
			metrics.RecordSweep("failed")
			logger.Error("incomplete journey not resolved", "journey_id", stale[i].ID, "error", err)
			continue
		}

		processed++
		metrics.RecordSweep("resolved")
		logger.Info("incomplete journey resolved", "journey_id", stale[i].ID, "penalty", notice.Penalty.StringFixed(2))

		if s.notifier != nil {
			if err := s.notifier.SendPenaltyNotice(ctx, *notice); err != nil {
				logger.Warn("penalty notice not queued", "journey_id", stale[i].ID, "error", err)
			}
		}
	}

	logger.Info("incomplete journey sweep finished", "found", len(stale), "resolved", processed)
	return processed, nil
}

func (s *service) resolveIncomplete(ctx context.Context, journeyID, cardID int64, now time.Time) (*notify.PenaltyNotice, error) {
	penalty := s.calc.IncompleteJourneyPenalty()

	var notice *notify.PenaltyNotice
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		if _, err := s.cards.LockByID(ctx, q, cardID); err != nil {
			return err
		}

		// Re-read under the card lock: a tap-out may have won the race.
		j, err := s.journeys.FindByID(ctx, q, journeyID)
		if err != nil {
			return err
		}
		if j.Status != StatusInProgress {
			return ErrJourneyNotInProgress
		}

		txn, err := s.ledger.Debit(ctx, q, j.UserID, penalty, ledger.Entry{
			Type:        ledger.TypePenalty,
			JourneyID:   &j.ID,
			CardID:      &j.CardID,
			Description: "Incomplete journey penalty",
			At:          now,
		})
		if err != nil {
			return err
		}

		j.TapOutTime = &now
		j.FareAmount = penalty
		j.DiscountAmount = decimal.Zero
		j.FinalAmount = penalty
		j.Notes = fmt.Sprintf("No tap-out recorded within %s", s.cfg.MaxDuration)
		if err := s.journeys.MarkIncomplete(ctx, q, j); err != nil {
			return err
		}

		notice = &notify.PenaltyNotice{
			UserID:    j.UserID,
			JourneyID: j.ID,
			TapInTime: j.TapInTime,
			Penalty:   penalty,
			Balance:   txn.BalanceAfter,
		}
		stations, err := s.stations.FindByIDs(ctx, q, []int64{j.EntryStationID})
		if err != nil {
			return err
		}
		if st, ok := stations[j.EntryStationID]; ok {
			notice.EntryStation = st.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notice, nil
}

func (s *service) ActiveJourney(ctx context.Context, cardNumber string) (*View, error) {
	var view *View
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.cards.FindByNumber(ctx, q, cardNumber)
		if err != nil {
			return err
		}

		j, err := s.journeys.FindActiveByCard(ctx, q, c.ID)
		if err != nil {
			return err
		}

		stations, err := s.stations.FindByIDs(ctx, q, []int64{j.EntryStationID})
		if err != nil {
			return err
		}

		view = &View{
			ID:             j.ID,
			UserID:         j.UserID,
			CardNumber:     c.CardNumber,
			TapInTime:      j.TapInTime,
			Status:         j.Status,
			FareAmount:     j.FareAmount,
			DiscountAmount: j.DiscountAmount,
			FinalAmount:    j.FinalAmount,
		}
		if st, ok := stations[j.EntryStationID]; ok {
			view.EntryStationName = st.Name
			view.EntryStationCode = st.StationCode
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) History(ctx context.Context, userID int64, limit, offset int) ([]View, error) {
	var views []View
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var err error
		views, err = s.journeys.ListByUser(ctx, q, userID, limit, offset)
		return err
	})
	return views, err
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, ErrCardNotActive):
		return "card_not_active"
	case errors.Is(err, ErrStationNotFound):
		return "station_not_found"
	case errors.Is(err, ErrStationNotOperational):
		return "station_not_operational"
	case errors.Is(err, ErrActiveJourneyExists):
		return "active_journey_exists"
	case errors.Is(err, ErrNoActiveJourney):
		return "no_active_journey"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrTapTimeInFuture):
		return "tap_time_in_future"
	default:
		return "error"
	}
}
