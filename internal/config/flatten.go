package config

import (
	"reflect"
	"strings"
)

// Field is one settable key of Config, addressed by its dotted JSON path.
type Field struct {
	Key    string
	Kind   reflect.Kind
	Secret bool
}

// fields is derived once from the json and secret struct tags of Config.
var fields = collectFields(reflect.TypeOf(Config{}), "")

func collectFields(t reflect.Type, prefix string) []Field {
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if sf.Type.Kind() == reflect.Struct {
			out = append(out, collectFields(sf.Type, key)...)
			continue
		}
		out = append(out, Field{
			Key:    key,
			Kind:   sf.Type.Kind(),
			Secret: sf.Tag.Get("secret") == "true",
		})
	}
	return out
}

// Fields lists every config key in declaration order.
func Fields() []Field {
	return append([]Field(nil), fields...)
}

func lookupField(key string) (Field, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// IsSecretKey reports whether key holds a credential.
func IsSecretKey(key string) bool {
	f, ok := lookupField(key)
	return ok && f.Secret
}

// Flatten turns {"auth": {"xsrf_token": "t"}} into {"auth.xsrf_token": "t"}.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", m)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(out, k, child)
			continue
		}
		out[k] = v
	}
}

// Unflatten is the inverse of Flatten. A scalar sitting where a nested key
// needs a map is replaced.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range flat {
		parts := strings.Split(k, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return out
}

// MaskSecrets returns a copy of flat with non-empty secret strings reduced to
// "***" plus their last four characters.
func MaskSecrets(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))
	for k, v := range flat {
		if s, ok := v.(string); ok && s != "" && IsSecretKey(k) {
			v = maskSecret(s)
		}
		out[k] = v
	}
	return out
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "***" + s
	}
	return "***" + s[len(s)-4:]
}
