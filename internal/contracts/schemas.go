package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// AlertCriteriaV1 - ключ схемы тела POST /alerts.
const AlertCriteriaV1 = "AlertCriteria/1.0.0"

//go:embed schemas
var schemaFS embed.FS

var schemaFiles = map[string]string{
	AlertCriteriaV1: "schemas/alert-criteria/v1.json",
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func compileAll() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	compiledSchemas = make(map[string]*jsonschema.Schema, len(schemaFiles))
	for key, path := range schemaFiles {
		raw, err := schemaFS.ReadFile(path)
		if err != nil {
			compileErr = fmt.Errorf("failed to read schema %s: %w", path, err)
			return
		}
		if err := compiler.AddResource(path, bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("failed to add schema %s: %w", path, err)
			return
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			compileErr = fmt.Errorf("failed to compile schema %s: %w", path, err)
			return
		}
		compiledSchemas[key] = schema
	}
}

// Load компилирует все схемы. Вызывается при старте, чтобы ошибка в схеме
// остановила сервис, а не первый запрос.
func Load() error {
	compileOnce.Do(compileAll)
	return compileErr
}

// Validate проверяет JSON-тело по схеме с ключом schemaKey.
func Validate(schemaKey string, body []byte) error {
	if err := Load(); err != nil {
		return err
	}
	schema, ok := compiledSchemas[schemaKey]
	if !ok {
		return fmt.Errorf("schema '%s' not found", schemaKey)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
