package commerce

import (
	"net/url"
	"strconv"
	"time"
)

// Strategy is one query-parameter convention for the sales-history endpoint.
type Strategy struct {
	Name   string
	Params func(email, productID string, now time.Time) url.Values
}

// Strategies returns the sales-history queries in the order they are tried.
// The time-scoped query is last: the platform only returns recent sales
// unless a start date is given.
func Strategies(lookback time.Duration) []Strategy {
	return []Strategy{
		{
			Name: "buyer_email",
			Params: func(email, productID string, _ time.Time) url.Values {
				return url.Values{"buyer_email": {email}, "product_id": {productID}}
			},
		},
		{
			Name: "email",
			Params: func(email, productID string, _ time.Time) url.Values {
				return url.Values{"email": {email}, "product_id": {productID}}
			},
		},
		{
			Name: "buyer_email_since",
			Params: func(email, productID string, now time.Time) url.Values {
				start := now.Add(-lookback).UnixMilli()
				return url.Values{
					"buyer_email": {email},
					"product_id":  {productID},
					"start_date":  {strconv.FormatInt(start, 10)},
				}
			},
		},
	}
}
