package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nickyhof/SchemaSpec/core"
)

// WriteSchema writes server as indented JSON to a local path, file:// or
// s3:// URL.
func WriteSchema(ctx context.Context, url string, server *core.ServerSchema, cfg *S3Config) error {
	writer, err := openRemoteWriter(ctx, url, cfg)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(server); err != nil {
		writer.Close()
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", url, err)
	}
	return nil
}

// ReadSchema reads a JSON schema dump from a local path, file://, http(s)://
// or s3:// URL.
func ReadSchema(ctx context.Context, url string, cfg *S3Config) (*core.ServerSchema, error) {
	reader, err := openRemoteReader(ctx, url, cfg)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	server := core.NewServerSchema()
	if err := json.NewDecoder(reader).Decode(server); err != nil {
		return nil, fmt.Errorf("failed to decode schema from %s: %w", url, err)
	}
	if server.Databases == nil {
		server.Databases = make(map[string]*core.DatabaseSchema)
	}
	return server, nil
}
