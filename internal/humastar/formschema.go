// formschema.go — Form constraints read from OpenAPI schemas.
//
// A form's Go type is registered in the API's schema registry, so the
// constraints published in /openapi.json (description, enum, default,
// minLength, maxLength) are the ones the rendered HTML form applies.
package humastar

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/danielgtaylor/huma/v2"
)

// FormSchema registers t with the API's schema registry and returns its
// object schema.
func FormSchema(api huma.API, t reflect.Type) *huma.Schema {
	reg := api.OpenAPI().Components.Schemas
	schema := reg.Schema(t, true, "")
	if schema.Ref != "" {
		schema = reg.SchemaFromRef(schema.Ref)
	}
	return schema
}

// FormField is the part of one schema property a form input needs.
type FormField struct {
	Name      string
	Label     string
	Required  bool
	Default   string
	Enum      []string
	MinLength int
	MaxLength int
}

// Field describes the property name of schema. An unknown property yields
// a FormField with only Name set.
func Field(schema *huma.Schema, name string) FormField {
	f := FormField{Name: name}
	if schema == nil {
		return f
	}
	prop, ok := schema.Properties[name]
	if !ok {
		return f
	}
	f.Label = prop.Description
	f.Required = slices.Contains(schema.Required, name)
	if prop.Default != nil {
		f.Default = fmt.Sprint(prop.Default)
	}
	for _, v := range prop.Enum {
		f.Enum = append(f.Enum, fmt.Sprint(v))
	}
	if prop.MinLength != nil {
		f.MinLength = *prop.MinLength
	}
	if prop.MaxLength != nil {
		f.MaxLength = *prop.MaxLength
	}
	return f
}

// Fields describes every named property of schema, keyed by name.
func Fields(schema *huma.Schema, names ...string) map[string]FormField {
	out := make(map[string]FormField, len(names))
	for _, name := range names {
		out[name] = Field(schema, name)
	}
	return out
}
