package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats lists the accepted --format values.
func Formats() []string {
	return []string{"json", "edn", "table"}
}

// Write writes v in the requested format.
//
// json and edn print the whole value. table prints only the "data" part of a
// {"data": ...} envelope, since hints and meta don't fit in rows.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "table":
		return WriteTable(w, envelopeData(v))
	default:
		return fmt.Errorf("unknown format: %s (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func envelopeData(v any) any {
	if m, ok := v.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return v
}

// toGeneric round-trips v through JSON so struct tags decide field names.
// Numbers stay json.Number to keep integers exact.
func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return nil, err
	}
	return x, nil
}
