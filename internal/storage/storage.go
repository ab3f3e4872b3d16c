// Package storage persists the bot's state as whole JSON documents.
//
// Each store owns one named document. Backends only ever replace a document
// in full, so a reader sees either the previous or the new version.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("document not found")

// Backend stores named documents.
type Backend interface {
	// Load returns ErrNotFound when the document was never saved.
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// LoadJSON decodes document name into v. It reports false without error when
// the document does not exist yet.
func LoadJSON(ctx context.Context, b Backend, name string, v any) (bool, error) {
	data, err := b.Load(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// SaveJSON encodes v and replaces document name.
func SaveJSON(ctx context.Context, b Backend, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := b.Save(ctx, name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
