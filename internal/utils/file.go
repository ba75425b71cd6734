package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fjacquet/backup_client/internal/models"
	"gopkg.in/yaml.v2"
)

// FileExists checks if the given file exists.
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// ReadConfigFile reads an options file in YAML. Keys follow the yaml tags of
// models.Options; unknown keys are rejected.
func ReadConfigFile(filepath string) (models.Options, error) {
	var opts models.Options

	f, err := os.Open(filepath)
	if err != nil {
		return opts, fmt.Errorf("failed to open config file %s: %w", filepath, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	if err := decoder.Decode(&opts); err != nil {
		return opts, fmt.Errorf("failed to decode config file %s: %w", filepath, err)
	}

	return opts, nil
}

// DocFromJSONFile loads a resource document from a JSON file. The file must
// hold a single JSON object.
func DocFromJSONFile(filepath string) (models.Document, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file %s: %w", filepath, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("document file %s must contain a JSON object", filepath)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document file %s: %w", filepath, err)
	}
	return doc, nil
}
