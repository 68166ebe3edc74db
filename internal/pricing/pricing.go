// Package pricing holds the cost arithmetic derived from a FIPE reference price.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidPrice     = errors.New("invalid reference price")
	ErrInvalidDriverAge = errors.New("driver age must be positive")
	ErrUnknownState     = errors.New("unknown state")
	ErrProjectionInputs = errors.New("projection requires insurance and ipva")
)

const (
	auctionBidShare   = 0.45
	auctionFeeShare   = 0.05
	insuranceBaseRate = 0.05
	depreciationRate  = 0.10
	projectionYears   = 4
)

// Origin is the vehicle's provenance, which loads the insurance premium.
type Origin string

const (
	OriginParticular Origin = "particular"
	OriginFinanceira Origin = "financeira"
	OriginFurtoRoubo Origin = "furto_roubo"
	OriginSinistro   Origin = "sinistro"
)

// Location of the main garage.
type Location string

const (
	LocationCapital  Location = "capital"
	LocationInterior Location = "interior"
)

var originLoad = map[Origin]struct {
	label   string
	percent float64
}{
	OriginFinanceira: {"Origem (Financeira)", 10},
	OriginFurtoRoubo: {"Origem (Furto/Roubo)", 15},
	OriginSinistro:   {"Origem (Sinistro)", 50},
}

// ipvaRates holds the annual tax rate in percent per state.
var ipvaRates = map[string]float64{
	"AC": 2, "AL": 3, "AP": 3, "AM": 3, "BA": 2.5, "CE": 3.5, "DF": 3.5,
	"ES": 2, "GO": 3.75, "MA": 2.5, "MT": 3, "MS": 3.5, "MG": 4, "PA": 2.5,
	"PB": 2.5, "PR": 3.5, "PE": 2.4, "PI": 2.5, "RJ": 4, "RN": 3, "RS": 3,
	"RO": 3, "RR": 3, "SC": 2, "SP": 4, "SE": 2.5, "TO": 2,
}

type AuctionQuote struct {
	MaxBid float64 `json:"max_bid"`
	Fee    float64 `json:"fee"`
	Total  float64 `json:"total"`
}

// Auction estimates the highest sensible bid and the auctioneer fee on it.
func Auction(price float64) (AuctionQuote, error) {
	if price <= 0 {
		return AuctionQuote{}, ErrInvalidPrice
	}
	bid := price * auctionBidShare
	fee := bid * auctionFeeShare
	return AuctionQuote{MaxBid: bid, Fee: fee, Total: bid + fee}, nil
}

type InsuranceInput struct {
	Origin    Origin
	DriverAge int
	Location  Location
}

// Adjustment is one load or discount applied to the base premium.
type Adjustment struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

type InsuranceQuote struct {
	BasePremium float64      `json:"base_premium"`
	Annual      float64      `json:"annual"`
	Monthly     float64      `json:"monthly"`
	Adjustments []Adjustment `json:"adjustments"`
	// Warning is set for salvage vehicles, which many insurers refuse.
	Warning bool `json:"warning"`
}

// Insurance estimates the annual premium. Every adjustment is a percentage
// of the base premium, never compounded.
func Insurance(price float64, in InsuranceInput) (InsuranceQuote, error) {
	if price <= 0 {
		return InsuranceQuote{}, ErrInvalidPrice
	}
	if in.DriverAge <= 0 {
		return InsuranceQuote{}, ErrInvalidDriverAge
	}

	base := price * insuranceBaseRate
	q := InsuranceQuote{BasePremium: base, Adjustments: []Adjustment{}}
	apply := func(label string, percent float64) {
		amount := base * percent / 100
		q.Adjustments = append(q.Adjustments, Adjustment{Label: label, Percent: percent, Amount: amount})
		q.Annual += amount
	}

	q.Annual = base
	if load, ok := originLoad[in.Origin]; ok {
		apply(load.label, load.percent)
	}
	switch {
	case in.DriverAge < 25:
		apply("Idade (< 25 anos)", 30)
	case in.DriverAge > 45:
		apply("Idade (> 45 anos)", -10)
	}
	if in.Location == LocationCapital {
		apply("Local (Capital)", 15)
	}
	q.Warning = in.Origin == OriginSinistro
	q.Monthly = q.Annual / 12
	return q, nil
}

type IPVAQuote struct {
	State       string  `json:"state"`
	RatePercent float64 `json:"rate_percent"`
	Annual      float64 `json:"annual"`
}

// IPVA computes the annual vehicle tax for a state code such as "SP".
func IPVA(price float64, state string) (IPVAQuote, error) {
	if price <= 0 {
		return IPVAQuote{}, ErrInvalidPrice
	}
	state = strings.ToUpper(strings.TrimSpace(state))
	rate, ok := ipvaRates[state]
	if !ok {
		return IPVAQuote{}, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	return IPVAQuote{State: state, RatePercent: rate, Annual: price * rate / 100}, nil
}

// StateRate is one row of the IPVA table.
type StateRate struct {
	State       string  `json:"state"`
	RatePercent float64 `json:"rate_percent"`
}

// IPVARates returns the rate table sorted by state code.
func IPVARates() []StateRate {
	out := make([]StateRate, 0, len(ipvaRates))
	for state, rate := range ipvaRates {
		out = append(out, StateRate{State: state, RatePercent: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out
}

type ProjectionYear struct {
	Year         int     `json:"year"`
	Depreciation float64 `json:"depreciation"`
	Insurance    float64 `json:"insurance"`
	IPVA         float64 `json:"ipva"`
	Total        float64 `json:"total"`
}

type Projection struct {
	Years          []ProjectionYear `json:"years"`
	Total          float64          `json:"total"`
	MonthlyAverage float64          `json:"monthly_average"`
}

// Project spreads ownership cost over four years. Insurance and IPVA follow
// the depreciated value at the same ratios as in year one.
func Project(price, annualInsurance, ipvaRatePercent float64) (Projection, error) {
	if price <= 0 {
		return Projection{}, ErrInvalidPrice
	}
	if annualInsurance <= 0 || ipvaRatePercent <= 0 {
		return Projection{}, ErrProjectionInputs
	}

	insuranceRate := annualInsurance / price
	ipvaRate := ipvaRatePercent / 100
	value := price
	p := Projection{Years: make([]ProjectionYear, 0, projectionYears)}
	for year := 1; year <= projectionYears; year++ {
		y := ProjectionYear{
			Year:         year,
			Depreciation: value * depreciationRate,
			Insurance:    value * insuranceRate,
			IPVA:         value * ipvaRate,
		}
		y.Total = y.Depreciation + y.Insurance + y.IPVA
		p.Years = append(p.Years, y)
		p.Total += y.Total
		value -= y.Depreciation
	}
	p.MonthlyAverage = p.Total / (projectionYears * 12)
	return p, nil
}

type QuoteInput struct {
	ReferencePrice float64
	Insurance      InsuranceInput
	State          string
}

// Quote bundles every calculation for one vehicle.
type Quote struct {
	ReferencePrice float64        `json:"reference_price"`
	Auction        AuctionQuote   `json:"auction"`
	Insurance      InsuranceQuote `json:"insurance"`
	IPVA           IPVAQuote      `json:"ipva"`
	Projection     Projection     `json:"projection"`
}

// Calculate runs auction, insurance, IPVA and the projection.
func Calculate(in QuoteInput) (Quote, error) {
	auction, err := Auction(in.ReferencePrice)
	if err != nil {
		return Quote{}, err
	}
	insurance, err := Insurance(in.ReferencePrice, in.Insurance)
	if err != nil {
		return Quote{}, err
	}
	ipva, err := IPVA(in.ReferencePrice, in.State)
	if err != nil {
		return Quote{}, err
	}
	projection, err := Project(in.ReferencePrice, insurance.Annual, ipva.RatePercent)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		ReferencePrice: in.ReferencePrice,
		Auction:        auction,
		Insurance:      insurance,
		IPVA:           ipva,
		Projection:     projection,
	}, nil
}
