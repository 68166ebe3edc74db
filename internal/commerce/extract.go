package commerce

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
)

// millisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 ms is September 2001; no second-based timestamp reaches it before year 33658.
const millisThreshold = 1e12

// epoch decodes a platform timestamp sent as a number, a numeric string or
// an RFC 3339 string. Unparseable values decode to the zero time.
type epoch struct {
	time.Time
}

func (e *epoch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			e.Time = ts.UTC()
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	e.Time = epochToTime(v)
	return nil
}

func epochToTime(v float64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	if v >= millisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

// saleFields holds every field the platform has been seen to use, either at
// the top level of an item or nested under "purchase".
type saleFields struct {
	Status            string `json:"status"`
	TransactionStatus string `json:"transaction_status"`
	PurchaseDate      epoch  `json:"purchase_date"`
	ApprovedDate      epoch  `json:"approved_date"`
	OrderDate         epoch  `json:"order_date"`
}

type saleItem struct {
	saleFields
	Purchase *saleFields `json:"purchase"`
}

func (i saleItem) nested() saleFields {
	if i.Purchase == nil {
		return saleFields{}
	}
	return *i.Purchase
}

type statusAccessor struct {
	path string
	get  func(saleItem) string
}

type dateAccessor struct {
	path string
	get  func(saleItem) time.Time
}

// statusAccessors are tried in order; the first non-empty value is the status.
var statusAccessors = []statusAccessor{
	{"purchase.status", func(i saleItem) string { return i.nested().Status }},
	{"purchase.transaction_status", func(i saleItem) string { return i.nested().TransactionStatus }},
	{"status", func(i saleItem) string { return i.Status }},
	{"transaction_status", func(i saleItem) string { return i.TransactionStatus }},
}

var purchaseDateAccessors = []dateAccessor{
	{"purchase.purchase_date", func(i saleItem) time.Time { return i.nested().PurchaseDate.Time }},
	{"purchase_date", func(i saleItem) time.Time { return i.PurchaseDate.Time }},
}

var approvedDateAccessors = []dateAccessor{
	{"purchase.approved_date", func(i saleItem) time.Time { return i.nested().ApprovedDate.Time }},
	{"approved_date", func(i saleItem) time.Time { return i.ApprovedDate.Time }},
}

var orderDateAccessors = []dateAccessor{
	{"purchase.order_date", func(i saleItem) time.Time { return i.nested().OrderDate.Time }},
	{"order_date", func(i saleItem) time.Time { return i.OrderDate.Time }},
}

func firstStatus(item saleItem) string {
	for _, a := range statusAccessors {
		if v := strings.TrimSpace(a.get(item)); v != "" {
			return v
		}
	}
	return ""
}

func firstDate(item saleItem, accessors []dateAccessor) time.Time {
	for _, a := range accessors {
		if v := a.get(item); !v.IsZero() {
			return v
		}
	}
	return time.Time{}
}

// toSaleRecord converts an item. Status stays empty when no status field is
// present; the resolver discards such records after batch selection.
func toSaleRecord(item saleItem) domain.SaleRecord {
	record := domain.SaleRecord{
		PurchasedAt: firstDate(item, purchaseDateAccessors),
		ApprovedAt:  firstDate(item, approvedDateAccessors),
		OrderedAt:   firstDate(item, orderDateAccessors),
	}
	if status := firstStatus(item); status != "" {
		record.Status = domain.NormalizeSaleStatus(status)
	}
	return record
}

type historyResponse struct {
	Items []json.RawMessage `json:"items"`
}

// parseSalesHistory decodes a sales-history body. Items that are not objects
// are skipped; items without a status are kept. A body that is not JSON is an
// error.
func parseSalesHistory(body []byte) ([]domain.SaleRecord, error) {
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	records := make([]domain.SaleRecord, 0, len(resp.Items))
	for _, raw := range resp.Items {
		var item saleItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		records = append(records, toSaleRecord(item))
	}
	return records, nil
}
