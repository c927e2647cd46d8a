package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"
)

// Schemas reflects every wire type into a JSON Schema keyed by file name.
func Schemas() map[string]*jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}

	types := map[string]any{
		"upload_request":    &UploadRequest{},
		"upload_response":   &UploadResponse{},
		"download_response": &DownloadResponse{},
		"feedback_request":  &FeedbackRequest{},
		"feedback_response": &FeedbackResponse{},
		"error_response":    &ErrorResponse{},
	}

	out := make(map[string]*jsonschema.Schema, len(types))
	for name, typ := range types {
		schema := reflector.Reflect(typ)
		schema.Title = name
		out[name] = schema
	}
	return out
}

// WriteSchemas writes one <name>.schema.json per wire type into dir and
// returns the paths in a stable order.
func WriteSchemas(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	schemas := Schemas()
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		data, err := schemas[name].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal %s schema: %w", name, err)
		}
		path := filepath.Join(dir, name+".schema.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
