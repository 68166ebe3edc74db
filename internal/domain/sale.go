package domain

import (
	"strings"
	"time"
)

// SaleStatus is a lowercased transaction status reported by the commerce platform.
type SaleStatus string

const (
	SaleStatusApproved   SaleStatus = "approved"
	SaleStatusCompleted  SaleStatus = "completed"
	SaleStatusComplete   SaleStatus = "complete"
	SaleStatusActive     SaleStatus = "active"
	SaleStatusCanceled   SaleStatus = "canceled"
	SaleStatusCancelled  SaleStatus = "cancelled"
	SaleStatusRefunded   SaleStatus = "refunded"
	SaleStatusChargeback SaleStatus = "chargeback"
	SaleStatusBlocked    SaleStatus = "blocked"
	SaleStatusExpired    SaleStatus = "expired"
	SaleStatusPending    SaleStatus = "pending"
	SaleStatusRefused    SaleStatus = "refused"
)

var validSaleStatuses = map[SaleStatus]struct{}{
	SaleStatusApproved:  {},
	SaleStatusCompleted: {},
	SaleStatusComplete:  {},
	SaleStatusActive:    {},
}

var invalidSaleStatuses = map[SaleStatus]struct{}{
	SaleStatusCanceled:   {},
	SaleStatusCancelled:  {},
	SaleStatusRefunded:   {},
	SaleStatusChargeback: {},
	SaleStatusBlocked:    {},
	SaleStatusExpired:    {},
}

// NormalizeSaleStatus trims and lowercases a raw status.
func NormalizeSaleStatus(raw string) SaleStatus {
	return SaleStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// IsValid reports whether the status honours a completed, non-reversed purchase.
func (s SaleStatus) IsValid() bool {
	_, ok := validSaleStatuses[s]
	return ok
}

// IsInvalid reports whether the status marks a reversed, blocked or expired purchase.
// Statuses such as pending or refused are neither valid nor invalid.
func (s SaleStatus) IsInvalid() bool {
	_, ok := invalidSaleStatuses[s]
	return ok
}

// SaleRecord is one purchase-history entry for an (email, product) query.
// Zero timestamps mean the platform did not report the field.
type SaleRecord struct {
	Status      SaleStatus
	PurchasedAt time.Time
	ApprovedAt  time.Time
	OrderedAt   time.Time
}

// RecencyTime resolves the record's recency: purchase date, then approval
// date, then order date, then the Unix epoch.
func (r SaleRecord) RecencyTime() time.Time {
	for _, ts := range []time.Time{r.PurchasedAt, r.ApprovedAt, r.OrderedAt} {
		if !ts.IsZero() {
			return ts
		}
	}
	return time.Unix(0, 0).UTC()
}
