package openapi

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/widgets"
)

// Extension keys added to every property schema.
const (
	ExtensionWidget = "x-formgen-widget"
	ExtensionOrder  = "x-formgen-order"
)

// DefaultVersion is the OpenAPI version written by Document.
const DefaultVersion = "3.0.3"

// Export returns the object schema of f: one property per row, in row order
// through the order extension.
func Export(f *form.Form) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	if f == nil {
		return schema
	}
	if t := f.Type(); t != nil {
		schema.Title = t.Name()
	}
	for i, row := range f.Rows() {
		prop := propertySchema(row)
		prop.Extensions = map[string]any{
			ExtensionWidget: string(row.Widget.Kind()),
			ExtensionOrder:  i,
		}
		schema.Properties[row.Name] = openapi3.NewSchemaRef("", prop)
		if row.Property.Descriptor.Required {
			schema.Required = append(schema.Required, row.Name)
		}
	}
	return schema
}

// Document wraps the schemas of forms in an OpenAPI document, keyed by type
// name under components.
func Document(title, version string, forms ...*form.Form) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: DefaultVersion,
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(forms)),
		},
	}
	for _, f := range forms {
		if f == nil || f.Type() == nil {
			continue
		}
		doc.Components.Schemas[f.Type().Name()] = openapi3.NewSchemaRef("", Export(f))
	}
	return doc
}

// MarshalJSON renders the schema of f as indented JSON.
func MarshalJSON(f *form.Form) ([]byte, error) {
	return json.MarshalIndent(Export(f), "", "  ")
}

func propertySchema(row *form.Row) *openapi3.Schema {
	desc := row.Property.Descriptor
	kind := row.Widget.Kind()

	var schema *openapi3.Schema
	switch {
	case kind == widgets.KindForm:
		if nested, ok := row.Widget.(*form.Form); ok {
			schema = Export(nested)
		} else {
			schema = openapi3.NewObjectSchema()
		}
	case kind == widgets.KindCustom:
		schema = &openapi3.Schema{}
	case kind.IsMulti():
		schema = openapi3.NewArraySchema().WithItems(elementSchema(row.Property.Elem))
		schema.UniqueItems = row.Property.Kind == introspect.KindSet
	case kind == widgets.KindNumber:
		schema = numberSchema(row.Property, desc.Min, desc.Max)
	case kind == widgets.KindCheckbox:
		schema = openapi3.NewBoolSchema()
	case kind == widgets.KindDate:
		schema = openapi3.NewStringSchema().WithFormat("date")
	case kind == widgets.KindTime:
		schema = openapi3.NewStringSchema().WithFormat("time")
	case kind == widgets.KindDateTime:
		schema = openapi3.NewDateTimeSchema()
	case kind == widgets.KindImage:
		schema = openapi3.NewBytesSchema()
	case kind == widgets.KindPassword:
		schema = openapi3.NewStringSchema().WithFormat("password").WithMaxLength(int64(desc.MaxLength))
	case kind == widgets.KindColor:
		schema = openapi3.NewStringSchema().WithFormat("color")
	case row.Property.Kind == introspect.KindReference:
		schema = openapi3.NewStringSchema().WithFormat("entity-id")
	default:
		schema = openapi3.NewStringSchema()
		if row.Property.Kind == introspect.KindText && desc.MaxLength > 0 {
			schema.WithMaxLength(int64(desc.MaxLength))
		}
	}

	schema.Title = row.Label
	schema.Description = desc.Description
	schema.ReadOnly = desc.ReadOnly

	if in, ok := row.Widget.(*widgets.Input); ok {
		if in.Closed && len(in.Items) > 0 {
			schema.Enum = make([]any, 0, len(in.Items))
			for _, item := range in.Items {
				schema.Enum = append(schema.Enum, item.Value)
			}
		}
		if in.Default != nil {
			schema.Default = in.Default
		}
	}
	return schema
}

func numberSchema(prop introspect.Property, min, max float64) *openapi3.Schema {
	var schema *openapi3.Schema
	switch prop.Kind {
	case introspect.KindInteger:
		schema = openapi3.NewIntegerSchema()
	case introspect.KindDecimal:
		schema = openapi3.NewFloat64Schema().WithFormat("decimal")
	default:
		schema = openapi3.NewFloat64Schema()
	}
	if min > -math.MaxFloat64 {
		schema.WithMin(min)
	}
	if max < math.MaxFloat64 {
		schema.WithMax(max)
	}
	return schema
}

func elementSchema(t reflect.Type) *openapi3.Schema {
	if t == nil {
		return openapi3.NewStringSchema()
	}
	switch introspect.Classify(t, "") {
	case introspect.KindInteger:
		return openapi3.NewIntegerSchema()
	case introspect.KindFloat, introspect.KindDecimal:
		return openapi3.NewFloat64Schema()
	case introspect.KindBool:
		return openapi3.NewBoolSchema()
	case introspect.KindDateTime:
		return openapi3.NewDateTimeSchema()
	}
	return openapi3.NewStringSchema()
}
