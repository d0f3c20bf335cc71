package discovery

import (
	"fmt"
	"strings"
)

// TXTPair is one key/value attribute of a TXT record.
type TXTPair struct {
	Key   string
	Value string
}

// TXTRecord is an ordered attribute set with unique keys. The zero value is
// an empty record ready for use.
type TXTRecord struct {
	pairs []TXTPair
}

// NewTXTRecord builds a record from pairs in order. Duplicate keys are an
// error.
func NewTXTRecord(pairs ...TXTPair) (TXTRecord, error) {
	var rec TXTRecord
	for _, p := range pairs {
		if err := rec.Add(p.Key, p.Value); err != nil {
			return TXTRecord{}, err
		}
	}
	return rec, nil
}

// Len returns the number of attributes.
func (r *TXTRecord) Len() int { return len(r.pairs) }

// Has reports whether the key is present.
func (r *TXTRecord) Has(key string) bool {
	for _, p := range r.pairs {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Get returns the value for key and whether it was present.
func (r *TXTRecord) Get(key string) (string, bool) {
	for _, p := range r.pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Add appends a new attribute. Adding an existing key is an error; use Set
// to overwrite.
func (r *TXTRecord) Add(key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidTXTRecord)
	}
	if r.Has(key) {
		return fmt.Errorf("%w: %q", ErrDuplicateTXTKey, key)
	}
	r.pairs = append(r.pairs, TXTPair{Key: key, Value: value})
	return nil
}

// Set overwrites the value of an existing key in place, preserving its
// position in the record.
func (r *TXTRecord) Set(key, value string) error {
	for i, p := range r.pairs {
		if p.Key == key {
			r.pairs[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrTXTKeyNotFound, key)
}

// Clone returns an independent copy of the record.
func (r *TXTRecord) Clone() TXTRecord {
	if len(r.pairs) == 0 {
		return TXTRecord{}
	}
	pairs := make([]TXTPair, len(r.pairs))
	copy(pairs, r.pairs)
	return TXTRecord{pairs: pairs}
}

// Pairs returns the attributes in order. The slice is shared; callers must
// not modify it.
func (r *TXTRecord) Pairs() []TXTPair { return r.pairs }

// Strings converts the record to a slice of "key=value" strings, the format
// used by mDNS libraries.
func (r *TXTRecord) Strings() []string {
	out := make([]string, 0, len(r.pairs))
	for _, p := range r.pairs {
		if p.Value == "" {
			out = append(out, p.Key)
			continue
		}
		out = append(out, fmt.Sprintf("%s=%s", p.Key, p.Value))
	}
	return out
}

// String returns the record in "key=value" form joined by spaces.
func (r *TXTRecord) String() string {
	return strings.Join(r.Strings(), " ")
}

// TXTFromStrings parses a slice of "key=value" strings into a record.
// A string without "=" becomes a key with an empty value (boolean flag).
// Later duplicates of a key are ignored, matching mDNS responder behavior.
func TXTFromStrings(strs []string) TXTRecord {
	var rec TXTRecord
	for _, s := range strs {
		if s == "" {
			continue
		}
		key, value, _ := strings.Cut(s, "=")
		if key == "" {
			continue
		}
		if rec.Has(key) {
			continue
		}
		rec.pairs = append(rec.pairs, TXTPair{Key: key, Value: value})
	}
	return rec
}

// EncodeTXT serializes the record to the DNS wire form: a sequence of
// length-prefixed "key=value" segments (RFC 6763 section 6.1).
func EncodeTXT(rec TXTRecord) ([]byte, error) {
	var buf []byte
	for _, p := range rec.Pairs() {
		seg := p.Key
		if p.Value != "" {
			seg = p.Key + "=" + p.Value
		}
		if len(seg) > 255 {
			return nil, fmt.Errorf("%w: attribute %q exceeds 255 bytes", ErrInvalidTXTRecord, p.Key)
		}
		buf = append(buf, byte(len(seg)))
		buf = append(buf, seg...)
	}
	if len(buf) > MaxTXTRecordSize {
		return nil, fmt.Errorf("%w: record exceeds %d bytes", ErrInvalidTXTRecord, MaxTXTRecordSize)
	}
	return buf, nil
}

// DecodeTXT parses the DNS wire form into a record. Zero-length segments are
// skipped; a segment length running past the end of the data is an error.
func DecodeTXT(data []byte) (TXTRecord, error) {
	var rec TXTRecord
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		if i+n > len(data) {
			return TXTRecord{}, fmt.Errorf("%w: truncated segment at offset %d", ErrInvalidTXTRecord, i-1)
		}
		seg := string(data[i : i+n])
		i += n
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		if key == "" || rec.Has(key) {
			continue
		}
		rec.pairs = append(rec.pairs, TXTPair{Key: key, Value: value})
	}
	return rec, nil
}
