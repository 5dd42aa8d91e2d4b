package htmlexport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadExportOptions reads ExportOptions from a YAML file. Fields missing
// from the file keep their zero value and resolve to defaults at export
// time.
func LoadExportOptions(path string) (*ExportOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("htmlexport: reading options: %w", err)
	}
	opts, err := ParseExportOptions(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return opts, nil
}

// ParseExportOptions decodes YAML into ExportOptions. Unknown keys are
// rejected.
func ParseExportOptions(data []byte) (*ExportOptions, error) {
	var opts ExportOptions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("htmlexport: parsing options: %w", err)
	}
	return &opts, nil
}
