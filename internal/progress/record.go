package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformedRecord is returned by ParseRecord for blobs that are not a flat
// object of hierarchical keys to non-negative integers.
var ErrMalformedRecord = errors.New("malformed progress record")

// Record is one student's progress: hierarchical key to integer value.
// Composite keys hold a State; leaf keys hold an attempt counter.
// Absent keys mean "not started".
type Record struct {
	values    map[string]int
	UpdatedOn time.Time
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]int)}
}

// Get returns the stored value and whether the key is present.
func (r *Record) Get(key string) (int, bool) {
	v, ok := r.values[key]
	return v, ok
}

// value returns the stored value, or 0 when absent.
func (r *Record) value(key string) int {
	return r.values[key]
}

// Set stores value under key.
func (r *Record) Set(key string, value int) {
	r.init()
	r.values[key] = value
}

// Inc adds delta to the value under key, treating an absent key as 0.
func (r *Record) Inc(key string, delta int) {
	r.init()
	r.values[key] += delta
}

// init makes the zero Record usable.
func (r *Record) init() {
	if r.values == nil {
		r.values = make(map[string]int)
	}
}

// Len returns the number of stored keys.
func (r *Record) Len() int {
	return len(r.values)
}

// Keys returns all stored keys in sorted order.
func (r *Record) Keys() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	return &Record{values: maps.Clone(r.values), UpdatedOn: r.UpdatedOn}
}

// Encode serializes the record as a JSON object with sorted keys.
func (r *Record) Encode() (string, error) {
	if r.values == nil {
		return "{}", nil
	}
	// encoding/json sorts map keys, which keeps blobs byte-stable.
	b, err := json.Marshal(r.values)
	if err != nil {
		return "", fmt.Errorf("encode progress record: %w", err)
	}
	return string(b), nil
}

// DecodeRecord parses a stored blob, returning an empty record when the blob
// is absent or malformed. The next save then writes a well-formed blob.
func DecodeRecord(blob string) *Record {
	if strings.TrimSpace(blob) == "" {
		return NewRecord()
	}
	rec, err := ParseRecord(blob)
	if err != nil {
		return NewRecord()
	}
	return rec
}

// recordSchema describes a valid progress blob.
const recordSchema = `{
	"type": "object",
	"propertyNames": {"pattern": "^[ulahbsc]\\.[^.]+(\\.[ulahbsc]\\.[^.]+)*$"},
	"additionalProperties": {"type": "integer", "minimum": 0}
}`

const recordSchemaURL = "schema://progress-record.json"

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getRecordSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(recordSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse record schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(recordSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(recordSchemaURL)
	})
	return compiledSchema, compileErr
}

// ParseRecord strictly parses a blob. Trailing commas, trailing data,
// non-object documents, fractional or negative values and malformed keys are
// all rejected with an error wrapping ErrMalformedRecord.
func ParseRecord(blob string) (*Record, error) {
	dec := json.NewDecoder(strings.NewReader(blob))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedRecord)
	}

	schema, err := getRecordSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	obj := doc.(map[string]any)
	rec := &Record{values: make(map[string]int, len(obj))}
	for k, v := range obj {
		n, err := toInt(v.(json.Number))
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %v", ErrMalformedRecord, k, err)
		}
		rec.values[k] = n
	}
	return rec, nil
}

// toInt accepts integral numbers written either as "2" or "2.0".
func toInt(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		if i < 0 || i > math.MaxInt32 {
			return 0, fmt.Errorf("value %s is not a counter", n)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("value %s is not a counter", n)
	}
	return int(f), nil
}

// String is used in debug logging.
func (r *Record) String() string {
	var b bytes.Buffer
	for i, k := range r.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", k, r.values[k])
	}
	return b.String()
}
