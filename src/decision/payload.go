package decision

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Payload is a decoded dashboard document: the optional project setup plus the rows.
type Payload struct {
	Setup   map[string]interface{}
	Records []Record
}

// ParsePayload decodes an embedded dashboard payload into records. Malformed input
// yields an empty slice so callers can render their empty state.
func ParsePayload(raw string) []Record {
	return ParseDocument(raw).Records
}

// ParseDocument decodes a payload that may be:
//   - a JSON array of records,
//   - a JSON string whose content is itself JSON (double encoded),
//   - an object with a "dashboard" or "chart_data" list and an optional "setup" object.
func ParseDocument(raw string) Payload {
	v, ok := decodeJSON(raw)
	if !ok {
		return Payload{Records: []Record{}}
	}
	if s, isStr := v.(string); isStr {
		v, ok = decodeJSON(s)
		if !ok {
			return Payload{Records: []Record{}}
		}
	}
	switch x := v.(type) {
	case []interface{}:
		return Payload{Records: toRecords(x)}
	case map[string]interface{}:
		p := Payload{Records: []Record{}}
		if setup, ok := x["setup"].(map[string]interface{}); ok {
			p.Setup = setup
		}
		for _, key := range []string{"dashboard", "chart_data"} {
			if list, ok := x[key].([]interface{}); ok && len(list) > 0 {
				p.Records = toRecords(list)
				break
			}
		}
		return p
	default:
		return Payload{Records: []Record{}}
	}
}

func decodeJSON(s string) (interface{}, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// anything after the first value, stray closing brackets included, makes the
	// document invalid
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

func toRecords(list []interface{}) []Record {
	out := make([]Record, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]interface{}); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// EncodeItems serializes normalized items the way the dashboard embeds them.
func EncodeItems(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
