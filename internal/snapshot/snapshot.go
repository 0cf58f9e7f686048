package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Quote is a normalized price pair. Values are whole VND or absent;
// no floats survive normalization.
type Quote struct {
	Buy  *int64  `json:"buy"`
	Sell *int64  `json:"sell"`
	Unit *string `json:"unit"`
}

// Snapshot is the full normalized price state for one point in time:
// source -> product -> Quote. Iteration order follows first insertion,
// which is what the renderer and the serialized form preserve; lookups
// are plain map lookups.
type Snapshot struct {
	quotes  map[string]map[string]Quote
	sources []string
	order   map[string][]string
}

func New() *Snapshot {
	return &Snapshot{
		quotes: map[string]map[string]Quote{},
		order:  map[string][]string{},
	}
}

// Set stores a quote, creating the source bucket on first use. Writing
// an existing (source, product) key overwrites in place without touching
// its position.
func (s *Snapshot) Set(source, product string, q Quote) {
	bucket, ok := s.quotes[source]
	if !ok {
		bucket = map[string]Quote{}
		s.quotes[source] = bucket
		s.sources = append(s.sources, source)
	}
	if _, exists := bucket[product]; !exists {
		s.order[source] = append(s.order[source], product)
	}
	bucket[product] = q
}

func (s *Snapshot) Get(source, product string) (Quote, bool) {
	if s == nil {
		return Quote{}, false
	}
	q, ok := s.quotes[source][product]
	return q, ok
}

// Sources returns source names in first-seen order.
func (s *Snapshot) Sources() []string {
	out := make([]string, len(s.sources))
	copy(out, s.sources)
	return out
}

// Products returns product names of one source in first-seen order.
func (s *Snapshot) Products(source string) []string {
	out := make([]string, len(s.order[source]))
	copy(out, s.order[source])
	return out
}

// Len is the total number of stored quotes.
func (s *Snapshot) Len() int {
	n := 0
	for _, bucket := range s.quotes {
		n += len(bucket)
	}
	return n
}

func (s *Snapshot) Empty() bool { return s == nil || len(s.sources) == 0 }

// MarshalJSON writes sources and products in insertion order so the
// persisted payload reads the same way the report does.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, source := range s.sources {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, source); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, product := range s.order[source] {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, product); err != nil {
				return nil, err
			}
			qb, err := json.Marshal(s.quotes[source][product])
			if err != nil {
				return nil, err
			}
			buf.Write(qb)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	kb, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(kb)
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON reads a persisted payload back, preserving key order and
// sanitizing values through the normalization invariants: anything that
// is not a non-negative integer degrades to null, units to string or
// null. Wrong shapes (a non-object where an object is expected) are
// skipped rather than rejected.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	*s = *New()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		// Valid JSON of the wrong shape means no previous data.
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		source, _ := keyTok.(string)

		var products map[string]json.RawMessage
		var productOrder []string
		if err := decodeObject(dec, &products, &productOrder); err != nil {
			return err
		}
		if products == nil {
			continue
		}
		for _, product := range productOrder {
			var payload map[string]any
			if err := json.Unmarshal(products[product], &payload); err != nil {
				continue
			}
			s.Set(source, product, quoteFromPayload(payload))
		}
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// decodeObject consumes the next value. When it is an object, keys are
// collected in document order; any other value type is discarded and
// products stays nil.
func decodeObject(dec *json.Decoder, products *map[string]json.RawMessage, order *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return nil // scalar, discard
	}
	if d == '[' {
		return skipToClose(dec)
	}
	if d != '{' {
		return fmt.Errorf("unexpected delimiter %v", d)
	}

	*products = map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if _, exists := (*products)[key]; !exists {
			*order = append(*order, key)
		}
		(*products)[key] = raw
	}
	_, err = dec.Token()
	return err
}

func skipToClose(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return nil
}

func quoteFromPayload(payload map[string]any) Quote {
	q := Quote{
		Buy:  coerceInt(payload["buy"]),
		Sell: coerceInt(payload["sell"]),
	}
	if unit, ok := payload["unit"].(string); ok && unit != "" {
		q.Unit = &unit
	}
	return q
}

// Encode serializes a snapshot to its persisted UTF-8 form.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil {
		s = New()
	}
	return json.Marshal(s)
}

// Decode parses a persisted payload. Invalid JSON is an error; valid
// JSON of the wrong shape decodes to an empty snapshot.
func Decode(data []byte) (*Snapshot, error) {
	s := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}
