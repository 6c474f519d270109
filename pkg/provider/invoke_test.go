package provider

import (
	"errors"
	"testing"
)

type catalog struct {
	calls int
}

func (c *catalog) List() []string {
	c.calls++
	return []string{"a", "b"}
}

func (c *catalog) ListFor(prefix string) ([]string, error) {
	if prefix == "" {
		return nil, errors.New("prefix required")
	}
	return []string{prefix + "1"}, nil
}

func (c *catalog) Join(sep string, parts ...string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func (c *catalog) Boom() string { panic("kaboom") }

func (c *catalog) Check() error { return nil }

type dispatcher struct{}

func (dispatcher) Invoke(method string, args ...any) (any, error) {
	switch method {
	case "echo":
		return args, nil
	case "fail":
		return nil, errors.New("nope")
	default:
		return nil, ErrMethodNotFound
	}
}

func TestInvoke_Reflection(t *testing.T) {
	svc := &catalog{}

	got, err := Invoke(svc, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items := got.([]string); len(items) != 2 {
		t.Fatalf("unexpected items %v", items)
	}
	// cached lookups still invoke every time
	if _, err := Invoke(svc, "list"); err != nil || svc.calls != 2 {
		t.Fatalf("expected two calls, got %d (%v)", svc.calls, err)
	}

	got, err = Invoke(svc, "listFor", "x")
	if err != nil || got.([]string)[0] != "x1" {
		t.Fatalf("listFor: %v, %v", got, err)
	}

	got, err = Invoke(svc, "Join", "-", "a", "b", "c")
	if err != nil || got != "a-b-c" {
		t.Fatalf("variadic join: %v, %v", got, err)
	}

	if got, err := Invoke(svc, "check"); err != nil || got != nil {
		t.Fatalf("error-only method: %v, %v", got, err)
	}
}

func TestInvoke_Errors(t *testing.T) {
	svc := &catalog{}
	cases := []struct {
		name   string
		method string
		args   []any
		want   error
	}{
		{name: "missing method", method: "unknown", want: ErrMethodNotFound},
		{name: "too many args", method: "list", args: []any{1}, want: ErrArguments},
		{name: "wrong arg type", method: "listFor", args: []any{3}, want: ErrArguments},
		{name: "method error", method: "listFor", args: []any{""}, want: ErrInvocation},
		{name: "panic", method: "boom", want: ErrInvocation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Invoke(svc, tc.method, tc.args...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, err := Invoke(nil, "list"); !errors.Is(err, ErrInvocation) {
		t.Fatalf("nil target: %v", err)
	}
}

func TestInvoke_PrefersInvoker(t *testing.T) {
	got, err := Invoke(dispatcher{}, "echo", 1, "two")
	if err != nil {
		t.Fatalf("echo: %v", err)
	}
	if args := got.([]any); len(args) != 2 || args[1] != "two" {
		t.Fatalf("unexpected echo %v", got)
	}
	if _, err := Invoke(dispatcher{}, "fail"); !errors.Is(err, ErrInvocation) {
		t.Fatalf("expected ErrInvocation, got %v", err)
	}
	if _, err := Invoke(dispatcher{}, "nope"); !errors.Is(err, ErrMethodNotFound) {
		t.Fatalf("expected ErrMethodNotFound, got %v", err)
	}
}
