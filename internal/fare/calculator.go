// Package fare prices journeys by zones transited and applies the daily cap.
// Everything here is pure: no I/O, no clock. Zone numbers are validated by
// the caller before they reach the calculator.
package fare

import (
	"github.com/shopspring/decimal"
)

const moneyScale = 2

type Config struct {
	BaseFare          decimal.Decimal
	PerZoneCharge     decimal.Decimal
	DailyCapAmount    decimal.Decimal
	IncompletePenalty decimal.Decimal
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// ZonesTransited counts the zones a journey touches. Travel within one zone
// still counts as one zone.
func ZonesTransited(entryZone, exitZone int) int {
	diff := entryZone - exitZone
	if diff < 0 {
		diff = -diff
	}
	return diff + 1
}

// ApplyDailyCap splits a proposed fare into the part charged and the part
// discounted so that spend for the day never exceeds capAmount.
func ApplyDailyCap(spentToday, proposedFare, capAmount decimal.Decimal) (charged, discount decimal.Decimal) {
	proposed := Round(proposedFare)

	if spentToday.GreaterThanOrEqual(capAmount) {
		return decimal.Zero, proposed
	}

	if spentToday.Add(proposed).GreaterThan(capAmount) {
		charged = Round(capAmount.Sub(spentToday))
		return charged, Round(proposed.Sub(charged))
	}

	return proposed, decimal.Zero
}

// Round rounds half-up to two decimal places and clamps at zero.
func Round(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(moneyScale)
}

func (c *Calculator) ZonesTransited(entryZone, exitZone int) int {
	return ZonesTransited(entryZone, exitZone)
}

func (c *Calculator) BaseFare(zonesTransited int) decimal.Decimal {
	zoneFare := c.cfg.PerZoneCharge.Mul(decimal.NewFromInt(int64(zonesTransited)))
	return Round(c.cfg.BaseFare.Add(zoneFare))
}

func (c *Calculator) ApplyDailyCap(spentToday, proposedFare decimal.Decimal) (charged, discount decimal.Decimal) {
	return ApplyDailyCap(spentToday, proposedFare, c.cfg.DailyCapAmount)
}

func (c *Calculator) CapReached(spentToday decimal.Decimal) bool {
	return spentToday.GreaterThanOrEqual(c.cfg.DailyCapAmount)
}

func (c *Calculator) IncompleteJourneyPenalty() decimal.Decimal {
	return Round(c.cfg.IncompletePenalty)
}

func (c *Calculator) DailyCapAmount() decimal.Decimal {
	return c.cfg.DailyCapAmount
}
