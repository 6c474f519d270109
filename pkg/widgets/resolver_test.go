package widgets

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-entityform/pkg/introspect"
	"github.com/goliatone/go-entityform/pkg/provider"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type status string

const (
	statusOpen    status = "open"
	statusActive  status = "active"
	statusBlocked status = "blocked"
)

func (status) Enumerants() []any { return []any{statusOpen, statusActive, statusBlocked} }

type member struct {
	ID   string
	Name string
}

func (m *member) EntityID() string    { return m.ID }
func (m *member) EntityLabel() string { return m.Name }

type memberService struct{}

func (memberService) List() []*member {
	return []*member{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Linus"}}
}

type tagService struct{}

func (tagService) List() []string { return []string{"infra", "ui"} }

func (tagService) Categories() []string { return []string{"bug", "feature"} }

type panelService struct{}

func (panelService) CreatePanel() Widget {
	in := NewInput(KindCustom, "panel")
	return in
}

func (panelService) NotAWidget() string { return "nope" }

type awareWidget struct {
	*Input
	owner provider.ContentOwner
}

func (a *awareWidget) SetContentOwner(owner provider.ContentOwner) { a.owner = owner }

func (panelService) CreateAware() Widget {
	return &awareWidget{Input: NewInput(KindCustom, "aware")}
}

type owner struct{}

func (owner) CurrentEntity() any { return nil }

type ticket struct {
	Summary     string              `meta:"maxLength=500"`
	Title       string              `meta:"required;width=30em"`
	State       status              `meta:"useRadioButtons=false"`
	Mood        status              `meta:"useRadioButtons"`
	Labels      map[string]struct{} `meta:"dataProviderBean=tagService;useGridSelection;useDualListSelector"`
	Watchers    []string            `meta:"dataProviderBean=tagService;useDualListSelector"`
	Followers   []string            `meta:"dataProviderBean=tagService"`
	Notes       []string            `meta:""`
	Category    string              `meta:"dataProviderBean=tagService;dataProviderMethod=categories;defaultValue=feature"`
	Assignee    *member             `meta:""`
	Reviewer    *member             `meta:"dataProviderBean=none"`
	Points      int                 `meta:"min=0;max=13;defaultValue=3"`
	Cost        decimal.Decimal     `meta:""`
	Ratio       float64             `meta:""`
	Done        bool                `meta:"defaultValue=true"`
	Color       string              `meta:"colorField"`
	Icon        string              `meta:"useIcon;defaultValue=flag"`
	Secret      string              `meta:"passwordField;passwordRevealButton"`
	Avatar      []byte              `meta:"imageData"`
	Raw         []byte              `meta:""`
	Panel       string              `meta:"dataProviderBean=panelService;createComponentMethod='createPanel, other'"`
	Aware       string              `meta:"dataProviderBean=panelService;createComponentMethod=createAware"`
	Broken      string              `meta:"dataProviderBean=panelService;createComponentMethod=notAWidget"`
	Channel     chan int            `meta:""`
	Locked      *member             `meta:"comboboxReadOnly;dataProviderBean=memberService;autoSelectFirst"`
	Priority    status              `meta:"defaultValue=active"`
	BadPriority status              `meta:"defaultValue=urgent"`
	BadPoints   int                 `meta:"defaultValue=many"`
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	reg := provider.NewRegistry()
	reg.MustRegister("tagService", tagService{})
	reg.MustRegister("memberService", memberService{})
	reg.MustRegister("panelService", panelService{})
	return NewResolver(WithDataProvider(provider.NewResolver(provider.WithServices(reg))))
}

func property(t *testing.T, name string) introspect.Property {
	t.Helper()
	prop, err := introspect.Lookup(reflect.TypeOf(ticket{}), name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return prop
}

func choose(t *testing.T, r *Resolver, name string) *Input {
	t.Helper()
	w, err := r.Choose(Context{Property: property(t, name), Owner: owner{}})
	if err != nil {
		t.Fatalf("choose %s: %v", name, err)
	}
	in, ok := w.(*Input)
	if !ok {
		t.Fatalf("choose %s: expected *Input, got %T", name, w)
	}
	return in
}

func TestChoose_Kinds(t *testing.T) {
	r := newTestResolver(t)
	cases := map[string]Kind{
		"summary":   KindTextArea,
		"title":     KindText,
		"state":     KindSelect,
		"mood":      KindRadioGroup,
		"labels":    KindGridSelect,
		"watchers":  KindDualList,
		"followers": KindMultiSelect,
		"category":  KindCombobox,
		"assignee":  KindCombobox,
		"points":    KindNumber,
		"cost":      KindNumber,
		"ratio":     KindNumber,
		"done":      KindCheckbox,
		"color":     KindColor,
		"icon":      KindIcon,
		"secret":    KindPassword,
		"avatar":    KindImage,
		"panel":     KindCustom,
	}
	for name, want := range cases {
		name, want := name, want
		t.Run(name, func(t *testing.T) {
			in := choose(t, r, name)
			if in.Kind() != want {
				t.Fatalf("want %s, got %s", want, in.Kind())
			}
		})
	}
}

func TestChoose_LongTextBecomesTextArea(t *testing.T) {
	in := choose(t, newTestResolver(t), "summary")
	if in.Kind() != KindTextArea {
		t.Fatalf("maxLength 500 should yield a text area, got %s", in.Kind())
	}
	if in.MaxLength != 500 {
		t.Fatalf("max length not carried: %d", in.MaxLength)
	}
}

func TestChoose_EnumIsClosedSelect(t *testing.T) {
	in := choose(t, newTestResolver(t), "state")
	if in.Kind() != KindSelect || !in.Closed || in.AllowCustomValue {
		t.Fatalf("expected closed select, got kind=%s closed=%v custom=%v", in.Kind(), in.Closed, in.AllowCustomValue)
	}
	want := []Item{
		{Label: "open", Value: statusOpen},
		{Label: "active", Value: statusActive},
		{Label: "blocked", Value: statusBlocked},
	}
	if diff := cmp.Diff(want, in.Items); diff != "" {
		t.Fatalf("enumerants mismatch (-want +got):\n%s", diff)
	}
	if err := in.SetValue(status("archived")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("custom values must be rejected, got %v", err)
	}
	if err := in.SetValue(statusBlocked); err != nil {
		t.Fatalf("enumerant rejected: %v", err)
	}
}

func TestChoose_GridWinsOverDualList(t *testing.T) {
	in := choose(t, newTestResolver(t), "labels")
	if in.Kind() != KindGridSelect {
		t.Fatalf("grid selection must win, got %s", in.Kind())
	}
	if diff := cmp.Diff([]Item{{Label: "infra", Value: "infra"}, {Label: "ui", Value: "ui"}}, in.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestChoose_Exclusions(t *testing.T) {
	r := newTestResolver(t)
	for _, name := range []string{"notes", "reviewer"} {
		_, err := r.Choose(Context{Property: property(t, name)})
		if !errors.Is(err, ErrExcluded) {
			t.Fatalf("%s: expected ErrExcluded, got %v", name, err)
		}
	}
}

func TestChoose_Unsupported(t *testing.T) {
	r := newTestResolver(t)
	for _, name := range []string{"raw", "channel"} {
		_, err := r.Choose(Context{Property: property(t, name)})
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("%s: expected ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestChoose_ReferenceSynthesisesServiceName(t *testing.T) {
	in := choose(t, newTestResolver(t), "assignee")
	if len(in.Items) != 2 || in.Items[0].Label != "Ada" {
		t.Fatalf("expected members from memberService, got %+v", in.Items)
	}
}

func TestChoose_ChoiceOptions(t *testing.T) {
	in := choose(t, newTestResolver(t), "locked")
	if !in.ReadOnly {
		t.Fatalf("comboboxReadOnly should make the widget read only")
	}
	selected, ok := in.Value().(*member)
	if !ok || selected.ID != "1" {
		t.Fatalf("autoSelectFirst should select the first member, got %#v", in.Value())
	}
}

func TestChoose_PresentationState(t *testing.T) {
	r := newTestResolver(t)

	title := choose(t, r, "title")
	if !title.Required || title.Width != "30em" || title.FullWidth {
		t.Fatalf("explicit width and required not applied: %+v", title)
	}
	if title.ClassName != "form-field-text" || title.ID() == "" {
		t.Fatalf("class tag or id missing: %q %q", title.ClassName, title.ID())
	}

	summary := choose(t, r, "summary")
	if !summary.FullWidth || summary.MinWidth != DefaultMinWidth || summary.MaxWidth != DefaultMaxWidth {
		t.Fatalf("full width policy not applied: %+v", summary)
	}

	points := choose(t, r, "points")
	if points.Step != 1 || points.Min != 0 || points.Max != 13 {
		t.Fatalf("integer input constraints: step=%v min=%v max=%v", points.Step, points.Min, points.Max)
	}
	if cost := choose(t, r, "cost"); cost.Step != 0.01 {
		t.Fatalf("decimal input step: %v", cost.Step)
	}

	secret := choose(t, r, "secret")
	if !secret.PasswordReveal {
		t.Fatalf("password reveal flag lost")
	}
}

func TestChoose_Defaults(t *testing.T) {
	r := newTestResolver(t)

	if v := choose(t, r, "points").Value(); v != 3.0 {
		t.Fatalf("number default: %v", v)
	}
	if v := choose(t, r, "done").Value(); v != true {
		t.Fatalf("checkbox default: %v", v)
	}
	if v := choose(t, r, "category").Value(); v != "feature" {
		t.Fatalf("choice default matched by label: %v", v)
	}
	if v := choose(t, r, "priority").Value(); v != statusActive {
		t.Fatalf("enum default: %v", v)
	}
	icon := choose(t, r, "icon")
	if icon.Value() != "flag" {
		t.Fatalf("icon default: %v", icon.Value())
	}

	if err := icon.SetValue("star"); err != nil {
		t.Fatalf("set icon: %v", err)
	}
	icon.Clear()
	if icon.Value() != "flag" {
		t.Fatalf("clear should restore the default, got %v", icon.Value())
	}

	for _, name := range []string{"badPriority", "badPoints"} {
		_, err := r.Choose(Context{Property: property(t, name)})
		if !errors.Is(err, ErrInvalidDefault) {
			t.Fatalf("%s: expected ErrInvalidDefault, got %v", name, err)
		}
	}
}

func TestChoose_CustomComponent(t *testing.T) {
	r := newTestResolver(t)

	panel, err := r.Choose(Context{Property: property(t, "panel")})
	if err != nil {
		t.Fatalf("custom panel: %v", err)
	}
	if in := panel.(*Input); in.ClassName != "" {
		t.Fatalf("custom widgets are used verbatim, got class %q", in.ClassName)
	}

	own := owner{}
	aware, err := r.Choose(Context{Property: property(t, "aware"), Owner: own})
	if err != nil {
		t.Fatalf("aware widget: %v", err)
	}
	if aware.(*awareWidget).owner != own {
		t.Fatalf("content owner not injected")
	}

	if _, err := r.Choose(Context{Property: property(t, "broken")}); !errors.Is(err, ErrCustomWidget) {
		t.Fatalf("expected ErrCustomWidget, got %v", err)
	}
}

func TestChoose_DataProviderFailureIsFatal(t *testing.T) {
	r := NewResolver()
	_, err := r.Choose(Context{Property: property(t, "category")})
	if !errors.Is(err, provider.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestRegister_PriorityOverride(t *testing.T) {
	r := newTestResolver(t)
	r.Register("toggle", 999, func(ctx Context) bool {
		return ctx.Property.Kind == introspect.KindBool
	}, func(r *Resolver, ctx Context) (Widget, error) {
		return NewInput("toggle", ctx.Property.Name), nil
	})

	in := choose(t, r, "done")
	if in.Kind() != "toggle" {
		t.Fatalf("priority rule should win, got %s", in.Kind())
	}

	rules := r.Rules()
	if rules[len(rules)-1] != ruleUnsupported {
		t.Fatalf("unsupported rule must stay last, got %v", rules)
	}
	if r.Match(Context{Property: property(t, "done")}) != "toggle" {
		t.Fatalf("Match should report the overriding rule")
	}
}
