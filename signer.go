package ptv

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// SigningCredentials identifies a registered API consumer. Supplied once at
// client construction and never mutated afterwards.
type SigningCredentials struct {
	DeveloperID string
	Key         string
}

// Params maps query parameter names to a scalar (string, bool, integer,
// float) or a slice of scalars. Nil values are omitted from the canonical
// query entirely; zero and false are retained.
type Params map[string]any

// BuildQueryString serializes params into the canonical query form the
// server signs against: keys sorted lexicographically, list values expanded
// as repeated pairs sorted by value, every key and value percent-encoded.
// The output is a deterministic function of the map contents, byte-identical
// across calls regardless of map iteration order. Returns "" for an empty
// or all-nil map.
func BuildQueryString(params Params) string {
	if len(params) == 0 {
		return ""
	}

	values := make(map[string][]string, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		vs, ok := coerceValues(v)
		if !ok || len(vs) == 0 {
			continue
		}
		sort.Strings(vs)
		values[k] = vs
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(encodeComponent(k))
			b.WriteByte('=')
			b.WriteString(encodeComponent(v))
		}
	}
	return b.String()
}

// SignRequest computes the uppercase hex HMAC-SHA1 signature of
// "path?canonicalQuery" (bare path when the query is empty), keyed by the
// shared secret. Pure function: 40 hex characters, equal inputs give equal
// output.
func SignRequest(path, canonicalQuery, key string) string {
	payload := path
	if canonicalQuery != "" {
		payload = path + "?" + canonicalQuery
	}
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(payload))
	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// BuildSignedURL merges the developer id into params as "devid",
// canonicalizes, signs, and assembles the fully qualified URL. The signature
// parameter is appended last and is not itself part of the signed content.
// Referentially transparent: the request manager keys in-flight requests by
// this exact string.
func BuildSignedURL(baseURL, path string, params Params, creds SigningCredentials) string {
	merged := make(Params, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged["devid"] = creds.DeveloperID

	qs := BuildQueryString(merged)
	sig := SignRequest(path, qs, creds.Key)
	return baseURL + path + "?" + qs + "&signature=" + sig
}

// coerceValues flattens a parameter value into its string forms. The second
// return is false when the value is nil (typed or untyped) and the parameter
// should be dropped.
func coerceValues(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return coerceValues(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := coerceValues(rv.Index(i).Interface()); ok {
				out = append(out, s...)
			}
		}
		return out, true
	default:
		return []string{formatScalar(v)}, true
	}
}

func formatScalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// encodeComponent percent-encodes a single key or value. Spaces become %20,
// not +, so the client and server canonicalize to the same bytes.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
