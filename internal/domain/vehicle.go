package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// VehicleType is the FIPE catalog segment.
type VehicleType string

const (
	VehicleTypeCars   VehicleType = "carros"
	VehicleTypeBikes  VehicleType = "motos"
	VehicleTypeTrucks VehicleType = "caminhoes"
)

// Valid reports whether the type is one of the catalog segments.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeCars, VehicleTypeBikes, VehicleTypeTrucks:
		return true
	}
	return false
}

// CatalogCode is a FIPE catalog identifier. The API sends brand codes as
// strings and model codes as numbers, so both are accepted.
type CatalogCode string

func (c *CatalogCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CatalogCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CatalogCode(n.String())
	return nil
}

// CatalogEntry is a brand, model or year option.
type CatalogEntry struct {
	Code CatalogCode `json:"codigo"`
	Name string      `json:"nome"`
}

// Vehicle is the FIPE reference price record for one model year.
type Vehicle struct {
	VehicleType    int     `json:"TipoVeiculo"`
	Price          string  `json:"Valor"`
	Brand          string  `json:"Marca"`
	Model          string  `json:"Modelo"`
	ModelYear      int     `json:"AnoModelo"`
	Fuel           string  `json:"Combustivel"`
	FipeCode       string  `json:"CodigoFipe"`
	ReferenceMonth string  `json:"MesReferencia"`
	FuelAcronym    string  `json:"SiglaCombustivel"`
	ReferencePrice float64 `json:"-"`
}

// YearKey identifies the vehicle in caches keyed by FIPE code and model year.
func (v Vehicle) YearKey() string {
	return v.FipeCode + ":" + strconv.Itoa(v.ModelYear)
}
