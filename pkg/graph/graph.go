package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowmap/pkg/cache"
	flowerr "github.com/matzehuels/flowmap/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// ReadDocumentFile reads a document, choosing the decoder by extension.
func ReadDocumentFile(path string) (*Document, error) {
	if err := flowerr.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, flowerr.Wrap(flowerr.ErrCodeFileNotFound, err, "input %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := UnmarshalDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadDocument decodes a document from r.
func ReadDocument(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalDocument(data, format)
}

// UnmarshalDocument decodes a document. Unknown keys are rejected in every
// format so that misspelled options do not silently fall back to defaults.
func UnmarshalDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		var md toml.MetaData
		md, err = toml.Decode(string(data), &doc)
		if err == nil {
			err = undecodedKeys(md)
		}
	default:
		_, err = ParseFormat(string(format))
		return nil, err
	}
	if err != nil {
		return nil, flowerr.Wrap(flowerr.ErrCodeInvalidFormat, err, "decode %s document", format)
	}
	return &doc, nil
}

// MarshalDocument encodes a document in the given format.
func MarshalDocument(doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(doc, &buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument encodes a document to w.
func WriteDocument(doc *Document, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	}
	_, err := ParseFormat(string(format))
	return err
}

// HashInput returns a content hash of the document's nodes and links.
// Options are excluded; cache keys add them separately. Documents that
// differ only in encoding or key order hash the same.
func HashInput(doc *Document) (string, error) {
	data, err := json.Marshal(struct {
		Nodes any `json:"nodes"`
		Links any `json:"links"`
	}{doc.Nodes, doc.Links})
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return cache.Hash(data), nil
}

func undecodedKeys(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	slices.Sort(names)
	return fmt.Errorf("unknown keys: %s", strings.Join(names, ", "))
}
