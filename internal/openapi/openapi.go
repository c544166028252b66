// Package openapi loads the subset of an OpenAPI 3 document the dataset registry
// consumes: the GET operation of every path, in document order, with its
// summary, description, parameters and response examples.
//
// JSON documents are walked token by token and YAML documents through a node
// tree, so the order of the paths mapping survives decoding either way.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrNoPaths = errors.New("specification has no paths mapping")

// Document is the parsed specification, paths kept in document order.
type Document struct {
	Title   string
	Version string
	Paths   []PathItem
}

type PathItem struct {
	Path string
	Get  *Operation
}

type Operation struct {
	OperationID string              `yaml:"operationId" json:"operationId"`
	Summary     string              `yaml:"summary" json:"summary"`
	Description string              `yaml:"description" json:"description"`
	Tags        []string            `yaml:"tags" json:"tags"`
	Parameters  []Parameter         `yaml:"parameters" json:"parameters"`
	Responses   map[string]Response `yaml:"responses" json:"responses"`
}

type Parameter struct {
	Ref         string `yaml:"$ref" json:"$ref"`
	Name        string `yaml:"name" json:"name"`
	In          string `yaml:"in" json:"in"`
	Description string `yaml:"description" json:"description"`
	Required    bool   `yaml:"required" json:"required"`
	Schema      Schema `yaml:"schema" json:"schema"`
}

type Schema struct {
	Type   string `yaml:"type" json:"type"`
	Format string `yaml:"format" json:"format"`
}

type Response struct {
	Description string               `yaml:"description" json:"description"`
	Content     map[string]MediaType `yaml:"content" json:"content"`
}

type MediaType struct {
	Example any `yaml:"example" json:"example"`
}

// Example returns the example payload of the given status and media type.
func (o *Operation) Example(status, mediaType string) (any, bool) {
	if o == nil {
		return nil, false
	}
	resp, ok := o.Responses[status]
	if !ok {
		return nil, false
	}
	media, ok := resp.Content[mediaType]
	if !ok || media.Example == nil {
		return nil, false
	}
	return media.Example, true
}

type header struct {
	Info struct {
		Title   string `yaml:"title" json:"title"`
		Version string `yaml:"version" json:"version"`
	} `yaml:"info" json:"info"`
	Components struct {
		Parameters map[string]Parameter `yaml:"parameters" json:"parameters"`
	} `yaml:"components" json:"components"`
	Paths json.RawMessage `yaml:"-" json:"paths"`
}

// Load reads a specification from a local path or an http(s) URL and parses it.
func Load(ctx context.Context, source string) (*Document, error) {
	data, err := read(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	return doc, nil
}

func read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read specification: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch specification: %s returned %d", source, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification body: %w", err)
	}
	return data, nil
}

// Parse decodes a JSON or YAML specification. A document whose first
// non-blank byte is '{' is read as JSON.
func Parse(data []byte) (*Document, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSON(trimmed)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (*Document, error) {
	var head header
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&head); err != nil {
		return nil, fmt.Errorf("malformed specification: %w", err)
	}

	paths := bytes.TrimSpace(head.Paths)
	if len(paths) == 0 || paths[0] != '{' {
		return nil, ErrNoPaths
	}

	doc := &Document{Title: head.Info.Title, Version: head.Info.Version}

	dec = json.NewDecoder(bytes.NewReader(paths))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("malformed specification: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed specification: %w", err)
		}
		path, _ := tok.(string)

		var item struct {
			Get *Operation `json:"get"`
		}
		if err := dec.Decode(&item); err != nil {
			return nil, fmt.Errorf("malformed path %q: %w", path, err)
		}
		if err := doc.add(path, item.Get, head.Components.Parameters); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func parseYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("malformed specification: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrNoPaths
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("malformed specification: top level is not a mapping")
	}

	var head header
	if err := top.Decode(&head); err != nil {
		return nil, fmt.Errorf("malformed specification: %w", err)
	}

	paths := lookup(top, "paths")
	if paths == nil || paths.Kind != yaml.MappingNode {
		return nil, ErrNoPaths
	}

	doc := &Document{
		Title:   head.Info.Title,
		Version: head.Info.Version,
		Paths:   make([]PathItem, 0, len(paths.Content)/2),
	}

	for i := 0; i+1 < len(paths.Content); i += 2 {
		path := paths.Content[i].Value

		var item struct {
			Get *Operation `yaml:"get"`
		}
		if err := paths.Content[i+1].Decode(&item); err != nil {
			return nil, fmt.Errorf("malformed path %q: %w", path, err)
		}
		if err := doc.add(path, item.Get, head.Components.Parameters); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (d *Document) add(path string, get *Operation, components map[string]Parameter) error {
	if get != nil {
		if err := resolveParameters(get, components); err != nil {
			return fmt.Errorf("path %q: %w", path, err)
		}
	}
	d.Paths = append(d.Paths, PathItem{Path: path, Get: get})
	return nil
}

func resolveParameters(op *Operation, components map[string]Parameter) error {
	for i, p := range op.Parameters {
		if p.Ref == "" {
			continue
		}
		name := strings.TrimPrefix(p.Ref, "#/components/parameters/")
		resolved, ok := components[name]
		if !ok || name == p.Ref {
			return fmt.Errorf("unresolved parameter reference %q", p.Ref)
		}
		op.Parameters[i] = resolved
	}
	return nil
}

// lookup returns the value node stored under key in a mapping node.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
