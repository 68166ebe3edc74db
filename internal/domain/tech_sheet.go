package domain

import (
	"encoding/json"
	"time"
)

// TechSheet is a generated technical specification for one model year.
type TechSheet struct {
	Key       string
	FipeCode  string
	ModelYear int
	Brand     string
	Model     string
	Sheet     json.RawMessage
	ModelName string
	CreatedAt time.Time
	UpdatedAt time.Time
}
