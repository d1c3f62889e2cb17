package handler

import (
	"time"

	"github.com/ajitpratap0/metactx/pkg/json"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"github.com/mitchellh/mapstructure"
)

// typeNameProperty carries the element type in a properties struct. It is
// read on create and filled in on retrieval but never stored.
const typeNameProperty = "typeName"

// Encode converts a properties struct, map or bag into a property bag.
// Structs are named by their json tags, so the bag has the same shape it
// will have once stored.
func Encode(v any) (metadata.Properties, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case metadata.Properties:
		return t.Clone(), nil
	case map[string]any:
		return metadata.Properties(t).Clone(), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, "properties could not be encoded")
	}
	if string(data) == "null" {
		return nil, nil
	}
	var out metadata.Properties
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, "properties must encode as an object")
	}
	return out, nil
}

// Decode fills a properties struct from a bag. Values that went through a
// JSON store (numbers as float64, times as RFC 3339 strings) are converted
// back to the field types.
func Decode[P any](props metadata.Properties) (P, error) {
	var out P
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          "json",
		Result:           &out,
	})
	if err != nil {
		return out, omerrors.Wrap(err, omerrors.ErrorTypeInternal, "properties decoder could not be built")
	}
	if err := decoder.Decode(map[string]any(props)); err != nil {
		return out, omerrors.Wrap(err, omerrors.ErrorTypePropertyServer, "stored properties could not be decoded")
	}
	return out, nil
}
