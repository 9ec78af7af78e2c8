package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Vehicle is a read copy of a fleet entry.
type Vehicle struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Brand           Brand           `json:"brand"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	WeeklyRate      decimal.Decimal `json:"weekly_rate"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	Location        string          `json:"location,omitempty"`
	SeatingCapacity int             `json:"seating_capacity,omitempty"`
	FuelType        string          `json:"fuel_type,omitempty"`
	Transmission    string          `json:"transmission,omitempty"`
	Images          []VehicleImage  `json:"images,omitempty"`
}

type VehicleImage struct {
	Image     string `json:"image"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// Brand is sent either as a nested object or as a bare name.
type Brand struct {
	ID   uint   `json:"id,omitempty"`
	Name string `json:"name"`
}

func (b *Brand) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Name)
	}
	type plain Brand
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Brand(p)
	return nil
}
