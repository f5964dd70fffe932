package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"loan-advisor/domain"
)

//go:embed metadata_schema.json
var metadataSchemaJSON []byte

const metadataSchemaURL = "schema://model-metadata.json"

var (
	metadataSchemaOnce sync.Once
	metadataSchema     *jsonschema.Schema
	metadataSchemaErr  error
)

// LoadMetadata reads and validates the model metadata file.
func LoadMetadata(path string) (domain.ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ModelMetadata{}, fmt.Errorf("read model metadata: %w", err)
	}
	return ParseMetadata(data)
}

// ParseMetadata validates raw metadata JSON against the embedded schema and
// decodes it.
func ParseMetadata(data []byte) (domain.ModelMetadata, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return domain.ModelMetadata{}, fmt.Errorf("invalid metadata JSON: %w", err)
	}

	schema, err := compiledMetadataSchema()
	if err != nil {
		return domain.ModelMetadata{}, err
	}
	if err := schema.Validate(parsed); err != nil {
		return domain.ModelMetadata{}, fmt.Errorf("metadata schema validation failed: %w", err)
	}

	var meta domain.ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.ModelMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

func compiledMetadataSchema() (*jsonschema.Schema, error) {
	metadataSchemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(metadataSchemaJSON, &def); err != nil {
			metadataSchemaErr = fmt.Errorf("parse metadata schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(metadataSchemaURL, def); err != nil {
			metadataSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		metadataSchema, metadataSchemaErr = c.Compile(metadataSchemaURL)
	})
	return metadataSchema, metadataSchemaErr
}
