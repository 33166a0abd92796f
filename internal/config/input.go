package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/rpcore/internal/calculation"
	"github.com/rgehrsitz/rpcore/internal/domain"
)

// File is the on-disk scenario document: household, scenario and assets at
// the top level plus an optional conversion block read by compare-roth.
type File struct {
	domain.Input `yaml:",inline"`
	Conversion   *domain.ConversionParams `yaml:"conversion,omitempty"`
}

// InputParser handles parsing of input configuration files
type InputParser struct {
	// Strict rejects keys that map to no field.
	Strict bool
}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{Strict: true}
}

// LoadFromFile loads and validates a YAML scenario file.
func (ip *InputParser) LoadFromFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read file %s", filename)
	}
	cfg, err := ip.LoadFromBytes(data)
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", filename)
	}
	return cfg, nil
}

// LoadFromBytes parses and validates a YAML scenario document.
func (ip *InputParser) LoadFromBytes(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(ip.Strict)

	var cfg File
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.NewConfigError("input", "document is empty")
		}
		return nil, eris.Wrap(err, "failed to parse YAML")
	}

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfiguration applies scenario defaults and validates the input
// and, when present, the conversion block.
func (ip *InputParser) ValidateConfiguration(cfg *File) error {
	if cfg == nil {
		return domain.NewConfigError("input", "is required")
	}
	for _, src := range cfg.Assets {
		if src.Key() == calculation.SyntheticRothKey {
			return domain.NewConfigError("assets["+src.Key()+"]", "id is reserved")
		}
	}
	if err := cfg.Input.Prepare(); err != nil {
		return err
	}
	if cfg.Conversion != nil {
		if err := cfg.Conversion.Validate(); err != nil {
			return err
		}
		for id := range cfg.Conversion.AssetConversionMap {
			if !hasSource(cfg.Assets, id) {
				return domain.NewConfigError("conversion.asset_conversion_map["+id+"]", "refers to an unknown source")
			}
		}
	}
	return nil
}

// ConversionParams returns the conversion block, or an error naming the
// missing section.
func (f *File) ConversionParams() (domain.ConversionParams, error) {
	if f.Conversion == nil {
		return domain.ConversionParams{}, domain.NewConfigError("conversion", "section is required for a comparison")
	}
	return *f.Conversion, nil
}

func hasSource(assets []domain.IncomeSource, id string) bool {
	for _, src := range assets {
		if src.Key() == id {
			return true
		}
	}
	return false
}
