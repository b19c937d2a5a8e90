package journey

import (
	"github.com/murasakijyuutann/transport-payment/internal/apperr"
	"github.com/murasakijyuutann/transport-payment/internal/card"
	"github.com/murasakijyuutann/transport-payment/internal/station"
)

var (
	ErrCardNotFound    = card.ErrCardNotFound
	ErrStationNotFound = station.ErrStationNotFound
	ErrJourneyNotFound = apperr.New(apperr.ErrNotFound, "journey not found")

	ErrCardNotActive         = apperr.New(apperr.ErrInvalidState, "card is not active")
	ErrStationNotOperational = apperr.New(apperr.ErrInvalidState, "station is not operational")
	ErrInvalidStationZone    = apperr.New(apperr.ErrInvalidState, "station has no valid zone")
	ErrActiveJourneyExists   = apperr.New(apperr.ErrInvalidState, "active journey already exists")
	ErrNoActiveJourney       = apperr.New(apperr.ErrInvalidState, "no active journey found, please tap in first")
	ErrJourneyNotInProgress  = apperr.New(apperr.ErrInvalidState, "journey is no longer in progress")
	ErrTapOutBeforeTapIn     = apperr.New(apperr.ErrInvalidState, "tap-out time precedes tap-in time")

	ErrTapTimeInFuture = apperr.New(apperr.ErrInvalidInput, "tap time is in the future")

	ErrInsufficientBalance = apperr.New(apperr.ErrInsufficientBalance, "insufficient balance, please top up your account")
)
