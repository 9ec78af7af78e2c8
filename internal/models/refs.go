package models

import (
	"bytes"
	"encoding/json"
)

// VehicleRef holds a vehicle field that the Booking Service renders either
// as a bare id (create responses) or as an embedded object (summary,
// detail).
type VehicleRef struct {
	ID      uint
	Vehicle *Vehicle
}

func (r VehicleRef) MarshalJSON() ([]byte, error) {
	if r.Vehicle != nil {
		return json.Marshal(r.Vehicle)
	}
	return json.Marshal(r.ID)
}

func (r *VehicleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = VehicleRef{}
		return nil
	}
	if data[0] != '{' {
		r.Vehicle = nil
		return json.Unmarshal(data, &r.ID)
	}
	var v Vehicle
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.ID, r.Vehicle = v.ID, &v
	return nil
}

// CustomerRef is VehicleRef's counterpart for the booking's owner.
type CustomerRef struct {
	ID       uint
	Customer *Customer
}

func (r CustomerRef) MarshalJSON() ([]byte, error) {
	if r.Customer != nil {
		return json.Marshal(r.Customer)
	}
	return json.Marshal(r.ID)
}

func (r *CustomerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = CustomerRef{}
		return nil
	}
	if data[0] != '{' {
		r.Customer = nil
		return json.Unmarshal(data, &r.ID)
	}
	var c Customer
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	r.ID, r.Customer = c.ID, &c
	return nil
}
