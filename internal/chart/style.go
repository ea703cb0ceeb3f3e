package chart

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads chart overrides from a YAML file on top of DefaultOptions.
// An empty path returns the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read chart style: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse chart style %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("chart style %s: %w", path, err)
	}
	return opts, nil
}

func (o Options) Validate() error {
	var errs []error
	if o.Width <= o.MarginLeft+o.MarginRight {
		errs = append(errs, errors.New("width must exceed the horizontal margins"))
	}
	if o.BandHeight <= 0 {
		errs = append(errs, errors.New("band_height must be positive"))
	}
	if o.BandPadding < 0 || o.BandPadding >= 1 {
		errs = append(errs, errors.New("band_padding must be in [0,1)"))
	}
	if len(o.Domain) != 0 && len(o.Domain) != 2 {
		errs = append(errs, errors.New("domain needs exactly two values"))
	}
	return errors.Join(errs...)
}
