package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hugo-directus/pkg/models"
)

// Frontmatter formats understood by Hugo.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// renamedFields maps Directus timestamps onto the keys Hugo reads.
var renamedFields = map[string]string{
	models.FieldDateCreated: "date",
	models.FieldDateUpdated: "lastmod",
}

// FrontMatterFields prepares the metadata of an item: timestamps are
// renamed, the body and nil fields are dropped. A renamed timestamp replaces
// any field already using the target key.
func FrontMatterFields(item models.Item) map[string]interface{} {
	fm := make(map[string]interface{}, len(item))
	for k, v := range item {
		if k == models.FieldBody || v == nil {
			continue
		}
		if _, ok := renamedFields[k]; ok {
			continue
		}
		fm[k] = v
	}
	for from, to := range renamedFields {
		if v := item[from]; v != nil {
			fm[to] = v
		}
	}
	return fm
}

// FormatFrontMatter serializes the metadata of item as a frontmatter block.
// An empty format means YAML.
func FormatFrontMatter(item models.Item, format string) (string, error) {
	fm := FrontMatterFields(item)

	var buf, block bytes.Buffer
	switch strings.ToLower(format) {
	case FormatYAML, "":
		enc := yaml.NewEncoder(&block)
		enc.SetIndent(2)
		if err := enc.Encode(fm); err != nil {
			return "", fmt.Errorf("encode yaml frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode yaml frontmatter: %w", err)
		}
		writeFenced(&buf, "---", block.Bytes())
	case FormatTOML:
		enc := toml.NewEncoder(&block)
		if err := enc.Encode(fm); err != nil {
			return "", fmt.Errorf("encode toml frontmatter: %w", err)
		}
		writeFenced(&buf, "+++", block.Bytes())
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fm); err != nil {
			return "", fmt.Errorf("encode json frontmatter: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported frontmatter format: %s", format)
	}
	return buf.String(), nil
}

func writeFenced(buf *bytes.Buffer, fence string, body []byte) {
	buf.WriteString(fence)
	buf.WriteString("\n")
	buf.Write(bytes.TrimRight(body, "\n"))
	buf.WriteString("\n")
	buf.WriteString(fence)
	buf.WriteString("\n")
}

// ComposeDocument is the frontmatter block followed by the raw body.
func ComposeDocument(item models.Item, format string) (string, error) {
	fm, err := FormatFrontMatter(item, format)
	if err != nil {
		return "", err
	}
	return fm + item.Body(), nil
}
