package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"task-planner/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "task-list.schema.json"

var (
	documentSchema     *jsonschema.Schema
	documentSchemaErr  error
	documentSchemaOnce sync.Once
)

func loadSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			documentSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		documentSchema, documentSchemaErr = compiler.Compile(schemaURL)
	})
	return documentSchema, documentSchemaErr
}

// DecodeError reports a document that could not be decoded.
type DecodeError struct {
	Path    string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid task list document at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid task list document: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Codec converts task lists to and from the persisted JSON document.
type Codec struct {
	mapper *TaskMapper
}

// NewCodec creates a codec. gen fills in identifiers missing on decode.
func NewCodec(gen domain.IDGenerator) *Codec {
	return &Codec{mapper: NewTaskMapper(gen)}
}

// Encode serializes list. Field order and key names are stable.
func (c *Codec) Encode(list domain.TaskList) ([]byte, error) {
	data, err := json.Marshal(c.mapper.ToDocument(list))
	if err != nil {
		return nil, fmt.Errorf("encode task list: %w", err)
	}
	return data, nil
}

// Decode parses data after checking it against the document schema.
func (c *Codec) Decode(data []byte) (domain.TaskList, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance interface{}
	if err := dec.Decode(&instance); err != nil {
		return nil, &DecodeError{Message: err.Error(), Err: err}
	}
	if err := schema.Validate(instance); err != nil {
		return nil, schemaError(err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Message: err.Error(), Err: err}
	}
	return c.mapper.FromDocument(doc), nil
}

// schemaError reduces a validation error to its first leaf cause.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &DecodeError{Message: err.Error(), Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	path := strings.TrimPrefix(leaf.InstanceLocation, "/")
	path = strings.ReplaceAll(path, "/", ".")
	return &DecodeError{Path: path, Message: leaf.Message, Err: err}
}
