package exchange

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/table-planner/backend/internal/models"
)

// DecodeDocument parses, validates and migrates an imported JSON document.
// Schema problems are reported as *ValidationError.
func DecodeDocument(raw []byte) (*models.Document, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return decodeGeneric(generic)
}

// EncodeDocument renders doc as indented JSON, the format of the export file.
func EncodeDocument(doc *models.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// EncodeDocumentMsgpack renders doc as MessagePack with the same field
// names and shapes as the JSON export.
func EncodeDocumentMsgpack(doc *models.Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return msgpack.Marshal(generic)
}

// DecodeDocumentMsgpack is the MessagePack counterpart of DecodeDocument.
func DecodeDocumentMsgpack(raw []byte) (*models.Document, error) {
	var generic any
	if err := msgpack.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse msgpack document: %w", err)
	}
	// Round-trip through JSON so numbers take the float64 form Validate expects.
	js, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("parse msgpack document: %w", err)
	}
	return DecodeDocument(js)
}

func decodeGeneric(generic any) (*models.Document, error) {
	if err := Validate(generic); err != nil {
		return nil, err
	}
	root := generic.(map[string]any)
	for _, entry := range root["tables"].([]any) {
		stringify(entry.(map[string]any), "id", "label")
	}
	for _, entry := range root["guests"].([]any) {
		stringify(entry.(map[string]any), "id")
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return models.Migrate(&doc), nil
}

// stringify turns numeric ids and labels into their decimal text.
func stringify(obj map[string]any, keys ...string) {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case float64:
			obj[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			obj[k] = strconv.FormatBool(v)
		}
	}
}
