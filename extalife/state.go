package extalife

import (
	"bytes"
	"encoding/json"
)

// Field is a gateway record field that may be missing.
type Field[T comparable] struct {
	Value T
	Valid bool
}

func Some[T comparable](v T) Field[T] {
	return Field[T]{Value: v, Valid: true}
}

func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Valid
}

// Ptr returns nil for a missing field, for JSON views.
func (f Field[T]) Ptr() *T {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// DeviceState is the last known gateway data of one thermostat channel.
// Temperatures are in tenths of a degree Celsius. All fields are comparable
// so two states can be checked with ==.
type DeviceState struct {
	WorkMode             bool        `json:"work_mode"`
	Value                Field[int]  `json:"value"`
	Temperature          Field[int]  `json:"temperature"`
	WaitingToSynchronize Field[bool] `json:"waiting_to_synchronize"`
	TemperatureOld       Field[int]  `json:"temperature_old"`
}

// StatePatch holds the fields a writer wants to merge into a DeviceState.
// Nil members are left untouched.
type StatePatch struct {
	WorkMode *bool
	Value    *Field[int]
}

func (s DeviceState) merge(p StatePatch) DeviceState {
	if p.WorkMode != nil {
		s.WorkMode = *p.WorkMode
	}
	if p.Value != nil {
		s.Value = *p.Value
	}
	return s
}

// Channel is a discovered gateway channel.
type Channel struct {
	ID    string      `json:"id"`
	Alias string      `json:"alias,omitempty"`
	Data  DeviceState `json:"data"`
}

// StateNotification is the status push sent by the controller for a channel.
type StateNotification struct {
	State Field[int] `json:"state"`
	Value Field[int] `json:"value"`
}
