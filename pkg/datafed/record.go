package datafed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// IDPrefix marks data record ids.
const IDPrefix = "d/"

// Record is a data record as the service describes it.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Alias       string `json:"alias,omitempty"`
	Description string `json:"desc,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
	ParentID    string `json:"parent_id,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Creator     string `json:"creator,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
	Created     int64  `json:"ct,omitempty"`
	Updated     int64  `json:"ut,omitempty"`
}

// RecordID returns id in the d/<id> form the service addresses records by.
func RecordID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, IDPrefix) {
		return id
	}
	return IDPrefix + id
}

// Dump renders the record as the service's text form: one key: value line
// per populated field, strings quoted.
func (r *Record) Dump() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	str := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strconv.Quote(v))
		b.WriteByte('\n')
	}
	num := func(k string, v int64) {
		if v == 0 {
			return
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strconv.FormatInt(v, 10))
		b.WriteByte('\n')
	}

	str("id", r.ID)
	str("title", r.Title)
	str("alias", r.Alias)
	str("desc", r.Description)
	str("metadata", r.Metadata)
	str("parent_id", r.ParentID)
	str("owner", r.Owner)
	str("creator", r.Creator)
	num("size", r.Size)
	b.WriteString("locked: ")
	b.WriteString(strconv.FormatBool(r.Locked))
	b.WriteByte('\n')
	num("ct", r.Created)
	num("ut", r.Updated)
	return b.String()
}

// Fields is a normalized field dump. Keys keep their order of appearance.
type Fields struct {
	Keys   []string
	Values map[string]any
}

// Get returns the value stored for key.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f.Values[key]
	return v, ok
}

// GetString returns the value for key when it is a string.
func (f Fields) GetString(key string) string {
	s, _ := f.Values[key].(string)
	return s
}

// Map returns the fields as a plain map.
func (f Fields) Map() map[string]any {
	out := make(map[string]any, len(f.Values))
	for k, v := range f.Values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the fields as an object in key order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range f.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.Values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Token is a value that has not been coerced yet.
type Token string

// Normalize parses key: value lines and coerces every value.
func Normalize(text string) Fields {
	f := Fields{Values: map[string]any{}}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), ": ")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := f.Values[key]; !seen {
			f.Keys = append(f.Keys, key)
		}
		f.Values[key] = Coerce(Token(value))
	}
	return f
}

// NormalizeFields coerces any raw tokens left in f. Values that were already
// coerced are kept as they are, so normalizing twice changes nothing.
func NormalizeFields(f Fields) Fields {
	out := Fields{Keys: append([]string(nil), f.Keys...), Values: make(map[string]any, len(f.Values))}
	for k, v := range f.Values {
		out.Values[k] = Coerce(v)
	}
	return out
}

// Coerce turns a raw token into a string, bool or int64. Anything that is not
// a Token is returned unchanged.
func Coerce(v any) any {
	tok, ok := v.(Token)
	if !ok {
		return v
	}
	s := string(tok)
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`):
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	case s == "true":
		return true
	case s == "false":
		return false
	case isDigits(s):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
