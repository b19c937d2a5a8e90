package journey

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusIncomplete Status = "INCOMPLETE"
	StatusCancelled  Status = "CANCELLED"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s != StatusInProgress
}

type Journey struct {
	ID             int64           `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	CardID         int64           `db:"card_id" json:"card_id"`
	EntryStationID int64           `db:"entry_station_id" json:"entry_station_id"`
	ExitStationID  *int64          `db:"exit_station_id" json:"exit_station_id,omitempty"`
	TapInTime      time.Time       `db:"tap_in_time" json:"tap_in_time"`
	TapOutTime     *time.Time      `db:"tap_out_time" json:"tap_out_time,omitempty"`
	Status         Status          `db:"status" json:"status"`
	FareAmount     decimal.Decimal `db:"fare_amount" json:"fare_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	FinalAmount    decimal.Decimal `db:"final_amount" json:"final_amount"`
	ZonesTransited *int            `db:"zones_transited" json:"zones_transited,omitempty"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// DurationMinutes is the whole minutes between the taps, or 0 while open.
func (j *Journey) DurationMinutes() int64 {
	if j.TapOutTime == nil {
		return 0
	}
	return int64(j.TapOutTime.Sub(j.TapInTime) / time.Minute)
}

// View is a journey joined with its card and station names.
type View struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	CardNumber       string          `db:"card_number" json:"card_number"`
	EntryStationName string          `db:"entry_station_name" json:"entry_station_name"`
	EntryStationCode string          `db:"entry_station_code" json:"entry_station_code"`
	ExitStationName  *string         `db:"exit_station_name" json:"exit_station_name,omitempty"`
	ExitStationCode  *string         `db:"exit_station_code" json:"exit_station_code,omitempty"`
	TapInTime        time.Time       `db:"tap_in_time" json:"tap_in_time"`
	TapOutTime       *time.Time      `db:"tap_out_time" json:"tap_out_time,omitempty"`
	Status           Status          `db:"status" json:"status"`
	FareAmount       decimal.Decimal `db:"fare_amount" json:"fare_amount"`
	DiscountAmount   decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	FinalAmount      decimal.Decimal `db:"final_amount" json:"final_amount"`
	ZonesTransited   *int            `db:"zones_transited" json:"zones_transited,omitempty"`
	DurationMinutes  int64           `db:"-" json:"duration_minutes"`
}

type TapRequest struct {
	CardNumber  string     `json:"card_number" binding:"required"`
	StationCode string     `json:"station_code" binding:"required"`
	TapTime     *time.Time `json:"tap_time,omitempty"`
}

type TapInResult struct {
	JourneyID      int64           `json:"journey_id"`
	Status         Status          `json:"status"`
	StationName    string          `json:"station_name"`
	StationCode    string          `json:"station_code"`
	TapTime        time.Time       `json:"tap_time"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Message        string          `json:"message"`
}

type TapOutResult struct {
	JourneyID        int64           `json:"journey_id"`
	Status           Status          `json:"status"`
	EntryStationName string          `json:"entry_station_name"`
	ExitStationName  string          `json:"exit_station_name"`
	StationCode      string          `json:"station_code"`
	TapTime          time.Time       `json:"tap_time"`
	FareAmount       decimal.Decimal `json:"fare_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	ZonesTransited   int             `json:"zones_transited"`
	DurationMinutes  int64           `json:"duration_minutes"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	DailySpend       decimal.Decimal `json:"daily_spend"`
	DailyCapReached  bool            `json:"daily_cap_reached"`
	Message          string          `json:"message"`
}

type SweepResponse struct {
	Processed int `json:"processed"`
}
