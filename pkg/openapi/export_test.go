package openapi

import (
	"encoding/json"
	"testing"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/testsupport"
	"github.com/google/go-cmp/cmp"
)

func ticketForm(t *testing.T) *form.Form {
	t.Helper()
	f, err := form.BuildFor[testsupport.Ticket](form.WithServices(testsupport.Services()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return f
}

func TestExport_Ticket(t *testing.T) {
	f := ticketForm(t)
	schema := Export(f)

	if schema.Title != "Ticket" || !schema.Type.Is("object") {
		t.Fatalf("unexpected root schema: %s %v", schema.Title, schema.Type)
	}
	if diff := cmp.Diff([]string{"subject"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if len(schema.Properties) != len(f.Rows()) {
		t.Fatalf("properties = %d, rows = %d", len(schema.Properties), len(f.Rows()))
	}

	subject := schema.Properties["subject"].Value
	if !subject.Type.Is("string") || subject.MaxLength == nil || *subject.MaxLength != 120 {
		t.Fatalf("subject schema = %+v", subject)
	}
	if subject.Extensions[ExtensionWidget] != "text" || subject.Extensions[ExtensionOrder] != 0 {
		t.Fatalf("subject extensions = %v", subject.Extensions)
	}

	priority := schema.Properties["priority"].Value
	want := []any{testsupport.PriorityLow, testsupport.PriorityNormal, testsupport.PriorityUrgent}
	if diff := cmp.Diff(want, priority.Enum); diff != "" {
		t.Fatalf("priority enum mismatch (-want +got):\n%s", diff)
	}
	if priority.Default != testsupport.PriorityNormal {
		t.Fatalf("priority default = %v", priority.Default)
	}

	estimate := schema.Properties["estimate"].Value
	if !estimate.Type.Is("number") || estimate.Min == nil || *estimate.Min != 0 || *estimate.Max != 100 {
		t.Fatalf("estimate schema = %+v", estimate)
	}
	if cost := schema.Properties["cost"].Value; cost.Format != "decimal" || cost.Min != nil {
		t.Fatalf("cost schema = %+v", cost)
	}
	if tags := schema.Properties["tags"].Value; !tags.Type.Is("array") || tags.Items == nil {
		t.Fatalf("tags schema = %+v", tags)
	}
	if due := schema.Properties["due"].Value; due.Format != "date" {
		t.Fatalf("due format = %q", due.Format)
	}
	if ref := schema.Properties["reference"].Value; !ref.ReadOnly {
		t.Fatalf("reference should be read only")
	}
	if assignee := schema.Properties["assignee"].Value; assignee.Format != "entity-id" {
		t.Fatalf("assignee format = %q", assignee.Format)
	}
	if body := schema.Properties["body"].Value; body.Title != "Description" {
		t.Fatalf("body title = %q", body.Title)
	}
}

func TestMarshalJSONAndDocument(t *testing.T) {
	f := ticketForm(t)
	data, err := MarshalJSON(f)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	props, ok := decoded["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %s", data)
	}
	urgent, ok := props["urgent"].(map[string]any)
	if !ok || urgent["type"] != "boolean" || urgent[ExtensionWidget] != "checkbox" {
		t.Fatalf("urgent = %v", props["urgent"])
	}

	doc := Document("Help desk", "1.0.0", f, nil)
	if doc.OpenAPI != DefaultVersion || doc.Info.Title != "Help desk" {
		t.Fatalf("document header = %s %+v", doc.OpenAPI, doc.Info)
	}
	if _, ok := doc.Components.Schemas["Ticket"]; !ok || len(doc.Components.Schemas) != 1 {
		t.Fatalf("components = %v", doc.Components.Schemas)
	}

	if empty := Export(nil); len(empty.Properties) != 0 {
		t.Fatalf("nil form exported properties")
	}
}
