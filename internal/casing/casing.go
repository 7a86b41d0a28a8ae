// internal/casing/casing.go
//
// Package casing rewrites the keys of decoded JSON values between the
// storage convention (snake_case) and the client convention (camelCase).
package casing

import (
	"strings"
	"unicode"
)

// ToCamel returns v with every object key rewritten to camelCase. Slices are
// mapped element by element and every other value is returned as is. The
// input is not modified.
func ToCamel(v any) any {
	return walk(v, ToCamelKey)
}

// ToSnake is the write-side counterpart of ToCamel.
func ToSnake(v any) any {
	return walk(v, ToSnakeKey)
}

func walk(v any, key func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[key(k)] = walk(val, key)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = walk(val, key)
		}
		return out
	default:
		return v
	}
}

// ToCamelKey uppercases every ASCII letter that follows '_' or '-'. The
// underscore is dropped and the hyphen is kept, so "song_id" becomes
// "songId" and "x-request" becomes "x-Request".
func ToCamelKey(s string) string {
	if !strings.ContainsAny(s, "_-") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if (r == '_' || r == '-') && i+1 < len(rs) && isASCIILetter(rs[i+1]) {
			if r == '-' {
				b.WriteRune(r)
			}
			b.WriteRune(unicode.ToUpper(rs[i+1]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToSnakeKey lowercases every ASCII uppercase letter and prefixes it with an
// underscore unless it starts the key.
func ToSnakeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
