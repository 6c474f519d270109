package config

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/logging"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"github.com/google/go-cmp/cmp"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"entityform.yaml": {Data: []byte(`
tagKey: form
longTextThreshold: 80
minWidth: 10em
maxWidth: 40em
sessionBean: userSession
sortByOrder: true
log:
  level: debug
  development: true
`)},
	}
	cfg, err := Load(fsys, "entityform.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		TagKey:            "form",
		LongTextThreshold: 80,
		MinWidth:          "10em",
		MaxWidth:          "40em",
		SessionBean:       "userSession",
		SortByOrder:       true,
		Log:               logging.Config{Level: "debug", Development: true},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		invalid bool
	}{
		{name: "unknown key", input: "colour: blue"},
		{name: "bad threshold", input: "longTextThreshold: 0", invalid: true},
		{name: "empty tag key", input: "tagKey: ''", invalid: true},
		{name: "wrong type", input: "sortByOrder: [1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Fatalf("errors.Is(ErrInvalid) = %v, want %v (%v)", got, tt.invalid, err)
			}
		})
	}
}

type memo struct {
	Body string `form:"maxLength=100"`
	Head string `form:"order=1"`
}

func TestFormOptions(t *testing.T) {
	cfg, err := Parse([]byte("tagKey: form\nlongTextThreshold: 50\nsortByOrder: true\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, err := form.BuildFor[memo](cfg.FormOptions()...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"head", "body"}, f.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	body, _ := f.Widget("body")
	if body.Kind() != widgets.KindTextArea {
		t.Fatalf("body kind = %s, want textarea", body.Kind())
	}
	head, _ := f.Widget("head")
	in := head.(*widgets.Input)
	if in.MinWidth != widgets.DefaultMinWidth || in.MaxWidth != widgets.DefaultMaxWidth {
		t.Fatalf("width bounds = %q %q", in.MinWidth, in.MaxWidth)
	}
}
