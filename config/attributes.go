package config

import (
	"github.com/go-viper/mapstructure/v2"
)

// AttributeMap is a loosely typed peripheral description, as produced by decoding JSON into a map.
type AttributeMap map[string]interface{}

// TransformAttributeMapToStruct decodes attributes into to, which must be a pointer to a config
// struct. Field names come from the json tags; embedded bus configs are flattened.
func TransformAttributeMapToStruct[T any](to *T, attributes AttributeMap) (*T, error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	return to, nil
}

// FromAttributes builds a config from an attribute map shaped like the config file. It is the
// entry point for hosts that receive the peripheral description already decoded, for example as
// part of a larger JSON document, instead of as a file for Read. Numbers are converted weakly,
// so a float64 from encoding/json decodes into the uint line fields.
func FromAttributes(attributes AttributeMap) (*Config, error) {
	var cfg Config
	if _, err := TransformAttributeMapToStruct(&cfg, attributes); err != nil {
		return nil, err
	}
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
