package calculator

import (
	"fmt"

	"PaperTrader/internal/model"

	"github.com/shopspring/decimal"
)

// FeeSchedule holds the brokerage and statutory rates applied to a trade value.
type FeeSchedule struct {
	BrokerageRate decimal.Decimal `yaml:"brokerage_rate"`
	BrokerageCap  decimal.Decimal `yaml:"brokerage_cap"`
	STTRate       decimal.Decimal `yaml:"stt_rate"`
	ExchangeRate  decimal.Decimal `yaml:"exchange_rate"`
	GSTRate       decimal.Decimal `yaml:"gst_rate"`
	SEBIRate      decimal.Decimal `yaml:"sebi_rate"`
	StampDutyRate decimal.Decimal `yaml:"stamp_duty_rate"`
}

// DefaultFeeSchedule returns the discount-broker equity delivery rates.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		BrokerageRate: decimal.RequireFromString("0.001"),
		BrokerageCap:  decimal.NewFromInt(20),
		STTRate:       decimal.RequireFromString("0.00025"),
		ExchangeRate:  decimal.RequireFromString("0.0000345"),
		GSTRate:       decimal.RequireFromString("0.18"),
		SEBIRate:      decimal.RequireFromString("0.000001"),
		StampDutyRate: decimal.RequireFromString("0.00003"),
	}
}

// Validate rejects negative rates.
func (s FeeSchedule) Validate() error {
	rates := []struct {
		name string
		v    decimal.Decimal
	}{
		{"brokerage_rate", s.BrokerageRate},
		{"brokerage_cap", s.BrokerageCap},
		{"stt_rate", s.STTRate},
		{"exchange_rate", s.ExchangeRate},
		{"gst_rate", s.GSTRate},
		{"sebi_rate", s.SEBIRate},
		{"stamp_duty_rate", s.StampDutyRate},
	}
	for _, r := range rates {
		if r.v.IsNegative() {
			return fmt.Errorf("fees.%s must not be negative", r.name)
		}
	}
	return nil
}

// TaxBreakdown lists the statutory charges of one trade.
type TaxBreakdown struct {
	STT             decimal.Decimal `json:"stt"`
	ExchangeCharges decimal.Decimal `json:"exchangeCharges"`
	GST             decimal.Decimal `json:"gst"`
	SEBICharges     decimal.Decimal `json:"sebiCharges"`
	StampDuty       decimal.Decimal `json:"stampDuty"`
}

func (t TaxBreakdown) Total() decimal.Decimal {
	return t.STT.Add(t.ExchangeCharges).Add(t.GST).Add(t.SEBICharges).Add(t.StampDuty)
}

// Brokerage is a percentage of the trade value capped at a flat amount.
func (s FeeSchedule) Brokerage(tradeValue decimal.Decimal) decimal.Decimal {
	return decimal.Min(tradeValue.Mul(s.BrokerageRate), s.BrokerageCap)
}

// Taxes computes the charges for one side. STT is only levied on SELL,
// stamp duty only on BUY; GST applies to brokerage plus exchange charges.
func (s FeeSchedule) Taxes(tradeValue decimal.Decimal, side model.Side) TaxBreakdown {
	exchange := tradeValue.Mul(s.ExchangeRate)
	t := TaxBreakdown{
		STT:             decimal.Zero,
		ExchangeCharges: exchange,
		GST:             s.Brokerage(tradeValue).Add(exchange).Mul(s.GSTRate),
		SEBICharges:     tradeValue.Mul(s.SEBIRate),
		StampDuty:       decimal.Zero,
	}
	switch side {
	case model.SideSell:
		t.STT = tradeValue.Mul(s.STTRate)
	case model.SideBuy:
		t.StampDuty = tradeValue.Mul(s.StampDutyRate)
	}
	return t
}

// TradeQuote is the full cost picture of a trade before it is booked.
type TradeQuote struct {
	Side       model.Side      `json:"side"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TradeValue decimal.Decimal `json:"tradeValue"`
	Brokerage  decimal.Decimal `json:"brokerage"`
	Taxes      TaxBreakdown    `json:"taxes"`
	// Net is the cash moved: cost including charges for BUY, proceeds after charges for SELL.
	Net decimal.Decimal `json:"net"`
}

// Quote prices quantity shares at price on side.
func (s FeeSchedule) Quote(quantity int64, price decimal.Decimal, side model.Side) TradeQuote {
	value := price.Mul(decimal.NewFromInt(quantity))
	brokerage := s.Brokerage(value)
	taxes := s.Taxes(value, side)
	charges := brokerage.Add(taxes.Total())

	net := value.Add(charges)
	if side == model.SideSell {
		net = value.Sub(charges)
	}
	return TradeQuote{
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		TradeValue: value,
		Brokerage:  brokerage,
		Taxes:      taxes,
		Net:        net,
	}
}
