package provider

import (
	"errors"
	"testing"

	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/google/go-cmp/cmp"
)

type project struct{ Name string }

type activity struct {
	Title   string
	Project *project
}

type activityService struct {
	lastParam any
	calls     int
}

func (s *activityService) List() []string { return []string{"planning", "review"} }

func (s *activityService) ListForEntity(entity any) []string {
	s.lastParam = entity
	return []string{"scoped"}
}

func (s *activityService) Statuses() map[string]struct{} {
	return map[string]struct{}{"open": {}, "closed": {}, "blocked": {}}
}

func (s *activityService) Nothing() []string { return nil }

func (s *activityService) Count() int { return 3 }

type projectService struct{ active *project }

func (s *projectService) ActiveProject() *project { return s.active }

func (s *projectService) ListByProject(p *project) []string {
	if p == nil {
		return []string{"none"}
	}
	return []string{p.Name + "-a", p.Name + "-b"}
}

// countingRegistry records lookups so tests can assert none happened.
type countingRegistry struct {
	*Registry
	lookups []string
}

func (c *countingRegistry) Lookup(name string) (any, error) {
	c.lookups = append(c.lookups, name)
	return c.Registry.Lookup(name)
}

type page struct{ entity any }

func (p *page) CurrentEntity() any { return p.entity }

func (p *page) ListPhases() []string { return []string{"alpha", "beta"} }

func descriptor(tag string) meta.Descriptor {
	desc, err := meta.Parse("field", nil, tag)
	if err != nil {
		panic(err)
	}
	return desc
}

func newFixture() (*Resolver, *countingRegistry, *activityService) {
	reg := &countingRegistry{Registry: NewRegistry()}
	svc := &activityService{}
	reg.MustRegister("activityService", svc)
	reg.MustRegister("projectService", &projectService{active: &project{Name: "apollo"}})
	return NewResolver(WithServices(reg)), reg, svc
}

func TestResolve_NamedDefaultMethod(t *testing.T) {
	r, _, _ := newFixture()
	items, err := r.ResolveList(descriptor("dataProviderBean=activityService"), nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]any{"planning", "review"}, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ThisParamPassesEntityVerbatim(t *testing.T) {
	r, reg, svc := newFixture()
	entity := &activity{Title: "ship"}

	desc := descriptor("dataProviderBean=activityService;dataProviderMethod=listForEntity;dataProviderParamMethod=this")
	items, err := r.ResolveList(desc, nil, entity)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if svc.lastParam != entity {
		t.Fatalf("entity not passed verbatim: %#v", svc.lastParam)
	}
	if diff := cmp.Diff([]string{"activityService"}, reg.lookups); diff != "" {
		t.Fatalf("parameter must not trigger a lookup (-want +got):\n%s", diff)
	}
	if len(items) != 1 || items[0] != "scoped" {
		t.Fatalf("unexpected items %v", items)
	}
}

func TestResolve_ParamBean(t *testing.T) {
	r, _, _ := newFixture()
	desc := descriptor("dataProviderBean=projectService;dataProviderMethod=listByProject;dataProviderParamMethod=activeProject")
	items, err := r.ResolveList(desc, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]any{"apollo-a", "apollo-b"}, items); diff != "" {
		t.Fatalf("param from primary bean (-want +got):\n%s", diff)
	}
}

func TestResolve_SessionParam(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("projectService", &projectService{})
	session := NewSession()
	session.Set("activeProject", &project{Name: "gemini"})
	r := NewResolver(WithServices(reg), WithSession(session))

	desc := descriptor("dataProviderBean=projectService;dataProviderMethod=listByProject;" +
		"dataProviderParamBean=session;dataProviderParamMethod=getActiveProject")
	items, err := r.ResolveList(desc, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if items[0] != "gemini-a" {
		t.Fatalf("session parameter not used: %v", items)
	}
}

func TestResolve_SessionFromRegistry(t *testing.T) {
	reg := NewRegistry()
	session := NewSession()
	session.Set("theme", []string{"dark"})
	reg.MustRegister("userSession", session)
	r := NewResolver(WithServices(reg), WithSessionName("userSession"))

	items, err := r.ResolveList(descriptor("dataProviderBean=session;dataProviderMethod=theme"), nil, nil)
	if err != nil || items[0] != "dark" {
		t.Fatalf("session lookup by name: %v, %v", items, err)
	}
}

func TestResolve_ContextAndThis(t *testing.T) {
	r, _, _ := newFixture()
	owner := &page{}

	items, err := r.ResolveList(descriptor("dataProviderBean=context;dataProviderMethod=listPhases"), owner, nil)
	if err != nil || len(items) != 2 {
		t.Fatalf("context target: %v, %v", items, err)
	}

	_, err = r.Resolve(descriptor("dataProviderBean=context;dataProviderMethod=listPhases"), nil, nil)
	if !errors.Is(err, ErrNoOwner) {
		t.Fatalf("expected ErrNoOwner, got %v", err)
	}

	names, err := r.ResolveList(descriptor("dataProviderBean=this;dataProviderMethod=serviceNames"), nil, nil)
	if err != nil {
		t.Fatalf("this target: %v", err)
	}
	if diff := cmp.Diff([]any{"activityService", "projectService"}, names); diff != "" {
		t.Fatalf("this target names (-want +got):\n%s", diff)
	}
}

func TestResolve_NoneIsDistinguishable(t *testing.T) {
	r, reg, _ := newFixture()
	_, err := r.Resolve(descriptor("dataProviderBean=none"), nil, nil)
	if !errors.Is(err, ErrSentinelNone) {
		t.Fatalf("expected ErrSentinelNone, got %v", err)
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Property != "field" {
		t.Fatalf("expected ResolutionError naming the property, got %#v", err)
	}
	if len(reg.lookups) != 0 {
		t.Fatalf("none must not reach the registry: %v", reg.lookups)
	}

	desc := descriptor("dataProviderBean=activityService;dataProviderParamBean=none;dataProviderParamMethod=x")
	if _, err := r.Resolve(desc, nil, nil); !errors.Is(err, ErrSentinelNone) {
		t.Fatalf("none param bean: %v", err)
	}
}

func TestResolve_Errors(t *testing.T) {
	r, _, _ := newFixture()
	cases := []struct {
		name string
		tag  string
		want error
	}{
		{name: "unknown bean", tag: "dataProviderBean=ghostService", want: ErrServiceNotFound},
		{name: "unknown method", tag: "dataProviderBean=activityService;dataProviderMethod=vanish", want: ErrMethodNotFound},
		{name: "nil result", tag: "dataProviderBean=activityService;dataProviderMethod=nothing", want: ErrNilResult},
		{name: "not a list", tag: "dataProviderBean=activityService;dataProviderMethod=count", want: ErrResultType},
		{name: "unset bean", tag: "", want: ErrServiceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.ResolveList(descriptor(tc.tag), nil, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveList_SetIsSortedAndFresh(t *testing.T) {
	r, _, _ := newFixture()
	desc := descriptor("dataProviderBean=activityService;dataProviderMethod=statuses")
	first, err := r.ResolveList(desc, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]any{"blocked", "closed", "open"}, first); diff != "" {
		t.Fatalf("set order (-want +got):\n%s", diff)
	}
	first[0] = "mutated"
	second, _ := r.ResolveList(desc, nil, nil)
	if second[0] != "blocked" {
		t.Fatalf("results must not be shared between calls")
	}
}
