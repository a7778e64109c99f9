package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

var reFence = regexp.MustCompile("(?is)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFences removes a surrounding ```json ... ``` block.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if m := reFence.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// DecodeResponse turns model content into an Extraction. Only undecodable JSON is an error;
// schema problems are recorded in Drift and coerced.
func DecodeResponse(kind constants.DocumentKind, content string) (Extraction, error) {
	body := StripCodeFences(content)
	if body == "" {
		return Extraction{}, errors.New("empty extraction response")
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return Extraction{Raw: []byte(body)}, fmt.Errorf("decode extraction json: %w", err)
	}

	out := Extraction{Raw: []byte(body), KeyOrder: TopLevelKeys([]byte(body))}
	if err := ValidateJSONAgainstSchema(BuildResponseSchema(kind), out.Raw); err != nil {
		out.Drift = append(out.Drift, err.Error())
	}
	records, payload, drift := CoerceRecords(v)
	out.Records = records
	out.Payload = payload
	out.Drift = append(out.Drift, drift...)
	return out, nil
}

// CoerceRecords guarantees a records collection. An object without a records array
// becomes a one-element collection holding that object.
func CoerceRecords(v any) ([]RawRecord, map[string]any, []string) {
	var drift []string
	switch t := v.(type) {
	case map[string]any:
		switch recs := t[RecordsKey].(type) {
		case []any:
			records := objectsOf(recs, &drift)
			payload := shallowCopy(t)
			payload[RecordsKey] = asAnySlice(records)
			return records, payload, drift
		case map[string]any:
			drift = append(drift, "records is an object; wrapped into a collection")
			records := []RawRecord{recs}
			payload := shallowCopy(t)
			payload[RecordsKey] = asAnySlice(records)
			return records, payload, drift
		default:
			drift = append(drift, "response has no records array; treated as a single record")
			records := []RawRecord{t}
			return records, map[string]any{RecordsKey: asAnySlice(records)}, drift
		}
	case []any:
		drift = append(drift, "response is a bare array; used as records")
		records := objectsOf(t, &drift)
		return records, map[string]any{RecordsKey: asAnySlice(records)}, drift
	default:
		drift = append(drift, fmt.Sprintf("response is a %T, not an object", v))
		return nil, map[string]any{RecordsKey: []any{}}, drift
	}
}

// TopLevelKeys lists the keys of a JSON object in document order.
func TopLevelKeys(raw []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}

func objectsOf(items []any, drift *[]string) []RawRecord {
	out := make([]RawRecord, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			*drift = append(*drift, fmt.Sprintf("records[%d] is a %T, skipped", i, it))
			continue
		}
		out = append(out, m)
	}
	return out
}

func asAnySlice(records []RawRecord) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
