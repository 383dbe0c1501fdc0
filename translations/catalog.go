// Package translations converts tutorial text catalogs between the nested
// JSON format the tutorials are authored in and the Qt TS XML format the
// translation pipeline consumes.
package translations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Entry is one translatable string from a catalog, addressed by its path
// through the nested JSON document, e.g. "screens.welcome.title" or
// "steps[2].hint".
type Entry struct {
	Path string
	Text string
}

// FlattenCatalog walks a nested JSON catalog and returns its non-empty
// strings in document order. Objects contribute dot-joined key paths,
// arrays contribute [i] index suffixes; strings of pure whitespace are
// skipped like empty ones.
func FlattenCatalog(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var entries []Entry
	if err := flattenValue(dec, "", &entries); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after catalog document")
	}
	return entries, nil
}

// flattenValue consumes one JSON value from dec, descending into objects
// and arrays. A plain map would lose the document's key order, so the
// walk stays on the token stream.
func flattenValue(dec *json.Decoder, path string, entries *[]Entry) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading catalog at %q: %w", path, err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return fmt.Errorf("reading key at %q: %w", path, err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("non-string key at %q", path)
				}
				childPath := key
				if path != "" {
					childPath = path + "." + key
				}
				if err := flattenValue(dec, childPath, entries); err != nil {
					return err
				}
			}
			_, err := dec.Token() // closing brace
			return err
		case '[':
			for i := 0; dec.More(); i++ {
				if err := flattenValue(dec, fmt.Sprintf("%s[%d]", path, i), entries); err != nil {
					return err
				}
			}
			_, err := dec.Token() // closing bracket
			return err
		}
		return fmt.Errorf("unexpected delimiter %q at %q", v, path)

	case string:
		if strings.TrimSpace(v) != "" {
			*entries = append(*entries, Entry{Path: path, Text: v})
		}
		return nil

	default:
		// Numbers, booleans and nulls carry no translatable text.
		return nil
	}
}

// orderedObject is a JSON object that marshals its keys in insertion
// order, so a TS-to-JSON conversion reproduces the catalog's layout.
type orderedObject struct {
	keys  []string
	items map[string]any
}

func newOrderedObject() *orderedObject {
	return &orderedObject{items: make(map[string]any)}
}

func (o *orderedObject) set(key string, value any) {
	if _, seen := o.items[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.items[key] = value
}

func (o *orderedObject) get(key string) (any, bool) {
	v, ok := o.items[key]
	return v, ok
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.items[key])
		if err != nil {
			return nil, fmt.Errorf("marshaling %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var (
	indexSuffixRe = regexp.MustCompile(`^(.*?)((?:\[\d+\])+)$`)
	indexDigitsRe = regexp.MustCompile(`\d+`)
)

type pathSegment struct {
	key     string
	indices []int
}

// parsePath splits an entry path into segments: dot-separated keys, each
// optionally carrying [i] index suffixes.
func parsePath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty catalog path")
	}
	var segs []pathSegment
	for _, part := range strings.Split(path, ".") {
		seg := pathSegment{key: part}
		if m := indexSuffixRe.FindStringSubmatch(part); m != nil {
			seg.key = m[1]
			for _, idx := range indexDigitsRe.FindAllString(m[2], -1) {
				n, err := strconv.Atoi(idx)
				if err != nil {
					return nil, fmt.Errorf("bad index in path %q: %w", path, err)
				}
				seg.indices = append(seg.indices, n)
			}
		}
		if seg.key == "" {
			return nil, fmt.Errorf("path %q has an empty segment", path)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// RebuildCatalog assembles entries back into the nested JSON document,
// indented two spaces, with object keys in entry order.
func RebuildCatalog(entries []Entry) ([]byte, error) {
	root := newOrderedObject()
	for _, e := range entries {
		if err := setByPath(root, e.Path, e.Text); err != nil {
			return nil, err
		}
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func setByPath(root *orderedObject, path, value string) error {
	segs, err := parsePath(path)
	if err != nil {
		return err
	}

	current := root
	for i, seg := range segs {
		last := i == len(segs)-1

		if len(seg.indices) == 0 {
			if last {
				current.set(seg.key, value)
				return nil
			}
			next, ok := current.get(seg.key)
			if !ok {
				child := newOrderedObject()
				current.set(seg.key, child)
				current = child
				continue
			}
			child, ok := next.(*orderedObject)
			if !ok {
				return fmt.Errorf("path %q descends into a non-object at %q", path, seg.key)
			}
			current = child
			continue
		}

		// Array segment: walk (and grow) the nested slices, then either
		// store the value or descend into an object element.
		existing, _ := current.get(seg.key)
		arr, ok := existing.([]any)
		if existing != nil && !ok {
			return fmt.Errorf("path %q indexes a non-array at %q", path, seg.key)
		}
		arr, leaf, err := growArray(arr, seg.indices, last, value)
		if err != nil {
			return fmt.Errorf("path %q: %w", path, err)
		}
		current.set(seg.key, arr)
		if last {
			return nil
		}
		current = leaf
	}
	return nil
}

// growArray extends arr so that the chained indices resolve, storing value
// at the innermost position when leaf is requested, otherwise ensuring an
// orderedObject lives there and returning it.
func growArray(arr []any, indices []int, storeValue bool, value string) ([]any, *orderedObject, error) {
	idx := indices[0]
	for len(arr) <= idx {
		arr = append(arr, nil)
	}

	if len(indices) > 1 {
		inner, ok := arr[idx].([]any)
		if arr[idx] != nil && !ok {
			return nil, nil, fmt.Errorf("index %d is not an array", idx)
		}
		inner, leaf, err := growArray(inner, indices[1:], storeValue, value)
		if err != nil {
			return nil, nil, err
		}
		arr[idx] = inner
		return arr, leaf, nil
	}

	if storeValue {
		arr[idx] = value
		return arr, nil, nil
	}
	obj, ok := arr[idx].(*orderedObject)
	if !ok {
		if arr[idx] != nil {
			return nil, nil, fmt.Errorf("index %d is not an object", idx)
		}
		obj = newOrderedObject()
		arr[idx] = obj
	}
	return arr, obj, nil
}
