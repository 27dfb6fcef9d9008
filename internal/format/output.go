package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	Text = "text"
	JSON = "json"
	EDN  = "edn"
)

// Valid reports whether f names a supported output format.
func Valid(f string) bool {
	switch strings.ToLower(f) {
	case Text, JSON, EDN:
		return true
	}
	return false
}

// Write writes v as json or edn. Text output is rendered by the caller.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(format) {
	case JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
