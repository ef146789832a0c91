// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"encoding/json"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

var rawMessageType = reflect.TypeOf(json.RawMessage(nil))

// DecodeConfig decodes the JSON document [b] over [out], which should already
// hold the defaults. Keys match json tags, durations may be written as
// strings like "10s" or as integer nanoseconds, and json.RawMessage fields
// receive their section re-encoded as JSON. Lists and maps present in [b]
// replace their defaults.
func DecodeConfig(b []byte, out interface{}) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			rawMessageHook,
		),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

func rawMessageHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != rawMessageType {
		return data, nil
	}
	return json.Marshal(data)
}
