package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes v as EDN: maps with keyword keys, vectors, strings, numbers,
// booleans and nil. Keys use EDN's hyphen convention (page_size becomes :page-size).
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := toGeneric(v)
	if err != nil {
		return err
	}
	var sb strings.Builder
	e := ednWriter{sb: &sb, pretty: pretty}
	e.value(x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednWriter struct {
	sb     *strings.Builder
	pretty bool
}

func (e ednWriter) value(v any, depth int) {
	switch t := v.(type) {
	case nil:
		e.sb.WriteString("nil")
	case bool:
		e.sb.WriteString(strconv.FormatBool(t))
	case json.Number:
		e.sb.WriteString(t.String())
	case string:
		e.sb.WriteString(strconv.Quote(t))
	case []any:
		e.coll('[', ']', len(t), depth, func(i int) { e.value(t[i], depth+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.coll('{', '}', len(keys), depth, func(i int) {
			e.sb.WriteString(keyword(keys[i]))
			e.sb.WriteByte(' ')
			e.value(t[keys[i]], depth+1)
		})
	default:
		e.sb.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

// coll writes n elements between open and closing, one per line when pretty.
func (e ednWriter) coll(open, closing byte, n, depth int, elem func(i int)) {
	e.sb.WriteByte(open)
	if n == 0 {
		e.sb.WriteByte(closing)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.sb.WriteByte('\n')
			e.sb.WriteString(strings.Repeat("  ", depth+1))
		case i > 0:
			e.sb.WriteByte(' ')
		}
		elem(i)
	}
	if e.pretty {
		e.sb.WriteByte('\n')
		e.sb.WriteString(strings.Repeat("  ", depth))
	}
	e.sb.WriteByte(closing)
}

func keyword(k string) string {
	k = strings.TrimSpace(k)
	k = strings.TrimLeft(k, "_")
	k = strings.NewReplacer("_", "-", " ", "-").Replace(k)
	if k == "" {
		k = "_"
	}
	return ":" + k
}
