package state

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode binds group data onto a struct using its json tags.
// Numbers decoded from JSON (float64, json.Number) are converted to the field types.
func Decode(data Data, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("failed to decode group data: %w", err)
	}
	return nil
}

// Encode converts a struct into group data using its json tags.
func Encode(v any) (Data, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode group data: %w", err)
	}
	out := Data{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to encode group data: %w", err)
	}
	return out, nil
}

// Load reads an accessor and decodes it into a T.
func Load[T any](scope Scope, acc Accessor) (T, error) {
	var out T
	data, err := acc.GetData(scope)
	if err != nil {
		return out, err
	}
	err = Decode(data, &out)
	return out, err
}

// Save encodes v and writes it through the accessor.
func Save(scope Scope, acc Accessor, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return acc.SetData(scope, data)
}
