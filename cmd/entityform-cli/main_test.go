package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_HTML(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-type", "ticket", "-sample", "-metrics"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		`data-type="Ticket"`,
		`value="Printer offline"`,
		`entityform_form_built_total{form=Ticket} 1`,
		`entityform_form_properties_excluded_total{form=Ticket} 1`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_SchemaWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "entityform.yaml")
	if err := os.WriteFile(cfgPath, []byte("longTextThreshold: 4000\nlog:\n  level: error\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	outPath := filepath.Join(dir, "schema.json")

	var out bytes.Buffer
	args := []string{"-format", "schema", "-config", cfgPath, "-output", outPath}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var schema struct {
		Properties map[string]map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := schema.Properties["body"]["x-formgen-widget"]; got != "text" {
		t.Fatalf("body widget = %v, want text with a raised threshold", got)
	}
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		{"-type", "invoice"},
		{"-format", "pdf"},
		{"extra"},
		{"-config", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		if err := run(context.Background(), args, &out); err == nil {
			t.Errorf("run(%v) succeeded, want error", args)
		}
	}
}
