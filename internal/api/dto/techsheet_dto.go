package dto

import (
	"encoding/json"
	"time"
)

// GenerateRequest is relayed to the generative model.
type GenerateRequest struct {
	Prompt string          `json:"prompt"`
	Schema json.RawMessage `json:"schema,omitempty"`
}

// TechSheetRequest identifies a vehicle.
type TechSheetRequest struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	ModelYear int    `json:"model_year"`
	FipeCode  string `json:"fipe_code"`
}

// TechSheetResponse wraps a generated or cached sheet.
type TechSheetResponse struct {
	Key       string          `json:"key"`
	Cached    bool            `json:"cached"`
	ModelName string          `json:"model_name,omitempty"`
	Sheet     json.RawMessage `json:"sheet"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}
