package widgets

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestInput_SetValueTypes(t *testing.T) {
	cases := []struct {
		kind  Kind
		good  any
		bad   any
		zero  any
		check any
	}{
		{kind: KindText, good: "hello", bad: 42, zero: ""},
		{kind: KindNumber, good: 3, bad: "3", zero: nil, check: 3.0},
		{kind: KindCheckbox, good: true, bad: "yes", zero: false},
		{kind: KindDate, good: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), bad: "2024-05-01", zero: time.Time{}},
		{kind: KindMultiSelect, good: []any{"a"}, bad: []string{"a"}, zero: []any{}},
		{kind: KindImage, good: []byte{1, 2}, bad: "png", zero: nil},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			in := NewInput(tc.kind, "field")
			if diff := cmp.Diff(tc.zero, in.Value()); diff != "" {
				t.Fatalf("zero value (-want +got):\n%s", diff)
			}
			if err := in.SetValue(tc.good); err != nil {
				t.Fatalf("set good value: %v", err)
			}
			want := tc.check
			if want == nil {
				want = tc.good
			}
			if diff := cmp.Diff(want, in.Value()); diff != "" {
				t.Fatalf("stored value (-want +got):\n%s", diff)
			}
			if err := in.SetValue(tc.bad); !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue, got %v", err)
			}
		})
	}
}

func TestInput_OnChange(t *testing.T) {
	in := NewInput(KindText, "title")
	var seen []any
	remove := in.OnChange(func(v any) { seen = append(seen, v) })

	_ = in.SetValue("a")
	_ = in.SetValue("a")
	_ = in.SetValue("b")
	remove()
	_ = in.SetValue("c")

	if diff := cmp.Diff([]any{"a", "b"}, seen); diff != "" {
		t.Fatalf("listener calls (-want +got):\n%s", diff)
	}
}

func TestInput_ItemsBehaviour(t *testing.T) {
	in := NewInput(KindCombobox, "owner")
	in.AutoSelectFirst = true
	in.ClearOnEmptyData = true

	in.SetItems([]Item{{Label: "Ada", Value: "ada"}, {Label: "Linus", Value: "linus"}})
	if in.Value() != "ada" {
		t.Fatalf("first item not auto selected: %v", in.Value())
	}

	_ = in.SetValue("linus")
	in.SetItems([]Item{{Label: "Grace", Value: "grace"}})
	if in.Value() != "linus" {
		t.Fatalf("existing selection must survive a refresh: %v", in.Value())
	}

	in.SetItems(nil)
	if in.Value() != nil {
		t.Fatalf("empty data should clear the selection: %v", in.Value())
	}

	calls := 0
	in.Loader = func() ([]Item, error) {
		calls++
		return []Item{{Label: "X", Value: "x"}}, nil
	}
	if err := in.Reload(); err != nil || calls != 1 || in.Value() != "x" {
		t.Fatalf("reload: err=%v calls=%d value=%v", err, calls, in.Value())
	}
}

func TestInput_Validate(t *testing.T) {
	text := NewInput(KindText, "title")
	text.Required = true
	if err := text.Validate(); !errors.Is(err, ErrRequired) {
		t.Fatalf("expected ErrRequired, got %v", err)
	}
	text.MaxLength = 3
	_ = text.SetValue("abcd")
	if err := text.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected max length violation, got %v", err)
	}

	num := NewInput(KindNumber, "points")
	num.Min, num.Max = 0, 10
	_ = num.SetValue(11)
	if err := num.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected range violation, got %v", err)
	}
	_ = num.SetValue(5)
	if err := num.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIconCatalog(t *testing.T) {
	catalog := DefaultIcons()
	if len(catalog.Names()) == 0 {
		t.Fatalf("builtin icons missing")
	}

	fsys := fstest.MapFS{
		"set/a.yaml": {Data: []byte(`icons:
  - name: bolt
    svg: '<svg viewBox="0 0 24 24"><script>alert(1)</script><path d="M0 0h24v24H0z"/></svg>'
`)},
		"set/readme.txt": {Data: []byte("ignored")},
	}
	loaded, err := LoadIcons(fsys)
	if err != nil {
		t.Fatalf("load icons: %v", err)
	}
	svg, ok := loaded.Markup("bolt")
	if !ok {
		t.Fatalf("bolt icon missing")
	}
	if strings.Contains(svg, "script") || !strings.Contains(svg, "<path") {
		t.Fatalf("icon not sanitised: %q", svg)
	}

	dup := fstest.MapFS{
		"a.yml": {Data: []byte("icons:\n  - name: x\n    svg: '<svg><path d=\"M0 0\"/></svg>'\n")},
		"b.yml": {Data: []byte("icons:\n  - name: x\n    svg: '<svg><path d=\"M0 0\"/></svg>'\n")},
	}
	if _, err := LoadIcons(dup); err == nil {
		t.Fatalf("expected duplicate icon error")
	}
}

type shade string

type step int

func TestInput_ClosedAcceptsNamedZero(t *testing.T) {
	colours := NewInput(KindSelect, "shade")
	colours.SetItems([]Item{{Label: "red", Value: shade("red")}})
	colours.Closed = true
	if err := colours.SetValue(shade("")); err != nil {
		t.Fatalf("empty enum value rejected: %v", err)
	}
	if err := colours.SetValue(shade("blue")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	steps := NewInput(KindRadioGroup, "step")
	steps.SetItems([]Item{{Label: "first", Value: step(0)}, {Label: "second", Value: step(1)}})
	steps.Closed = true
	steps.Required = true
	if err := steps.SetValue(step(0)); err != nil {
		t.Fatalf("zero enumerant rejected: %v", err)
	}
	if err := steps.Validate(); err != nil {
		t.Fatalf("offered zero enumerant is a selection: %v", err)
	}

	colours.Required = true
	if err := colours.SetValue(shade("")); err != nil {
		t.Fatalf("set empty: %v", err)
	}
	if err := colours.Validate(); !errors.Is(err, ErrRequired) {
		t.Fatalf("expected ErrRequired, got %v", err)
	}
}
