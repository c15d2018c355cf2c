package llmtool

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Struct tags read by FieldsFromStruct:
//
//	json:"name"          field name (falls back to snake_case of the Go name)
//	prompt_desc:"..."    description shown to the model
//	prompt_type:"..."    overrides the rendered type
//	prompt:"optional"    marks the field optional; "-" hides it
const (
	tagName = "json"
	tagDesc = "prompt_desc"
	tagType = "prompt_type"
	tagOpts = "prompt"
)

// FieldsFromStruct builds prompt fields from a Go struct using tags.
// Fields are required unless tagged prompt:"optional".
func FieldsFromStruct(v any) ([]PromptField, error) {
	if v == nil {
		return nil, fmt.Errorf("llmtool: struct is nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("llmtool: expected struct, got %s", t.Kind())
	}
	fields := make([]PromptField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts := tagOptions(f.Tag.Get(tagOpts))
		if opts["-"] {
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		typ := strings.TrimSpace(f.Tag.Get(tagType))
		if typ == "" {
			typ = typeString(f.Type)
		}
		fields = append(fields, PromptField{
			Name:        name,
			Type:        typ,
			Required:    !opts["optional"],
			Description: strings.TrimSpace(f.Tag.Get(tagDesc)),
		})
	}
	return fields, nil
}

// MustFieldsFromStruct panics on error; useful for prompt spec literals.
func MustFieldsFromStruct(v any) []PromptField {
	fields, err := FieldsFromStruct(v)
	if err != nil {
		panic(err)
	}
	return fields
}

func tagOptions(tag string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(tag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out[part] = true
		}
	}
	return out
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get(tagName), ",")
	switch strings.TrimSpace(name) {
	case "-":
		return ""
	case "":
		return snakeCase(f.Name)
	default:
		return strings.TrimSpace(name)
	}
}

func typeString(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return typeString(t.Elem()) + "[]"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "any"
	}
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
