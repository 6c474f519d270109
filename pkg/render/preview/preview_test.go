package preview

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/testsupport"
)

func TestRender_TicketSkeleton(t *testing.T) {
	f, err := form.BuildFor[testsupport.Ticket](form.WithServices(testsupport.Services()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := f.Populate(testsupport.SampleTicket(testsupport.Agents())); err != nil {
		t.Fatalf("populate: %v", err)
	}

	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, err := r.Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	subject, _ := f.Widget("subject")
	for _, want := range []string{
		`<form class="entityform" data-type="Ticket">`,
		`<label for="` + subject.ID() + `">Subject <span class="required">*</span></label>`,
		`name="subject" class="form-field-text" value="Printer offline"`,
		`placeholder="What went wrong?"`,
		`<textarea id=`,
		`maxlength="4000"`,
		`<option value="urgent" selected>urgent</option>`,
		`<option value="a2" selected>Grace</option>`,
		`<select id=`,
		` multiple>`,
		`<option value="printer" selected>printer</option>`,
		`type="number"`,
		`value="12.75"`,
		`type="date"`,
		`value="2024-03-04"`,
		`type="checkbox"`,
		` checked`,
		`name="reference" class="form-field-text" value="HD-1042" readonly>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered html missing %q", want)
		}
	}
	if strings.Contains(html, `name="internal"`) || strings.Contains(html, `name="attachments"`) {
		t.Errorf("hidden or excluded property rendered")
	}
	if t.Failed() {
		t.Logf("html:\n%s", html)
	}
}

type escaped struct {
	Title string `meta:"description='Use <b> & co'"`
}

func TestRender_EscapesValues(t *testing.T) {
	f, err := form.BuildFor[escaped]()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := f.Populate(&escaped{Title: `"quoted" <tag>`}); err != nil {
		t.Fatalf("populate: %v", err)
	}
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	html, err := r.Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, `<tag>`) {
		t.Fatalf("value not escaped:\n%s", html)
	}
	if !strings.Contains(html, "&lt;tag&gt;") {
		t.Fatalf("escaped value missing:\n%s", html)
	}
}

func TestCustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"list.tpl": {Data: []byte(`{% for row in form.Rows %}{{ row.Name }};{% endfor %}`)},
	}
	r, err := New(WithTemplates(files), WithTemplateName("list.tpl"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := form.BuildFor[testsupport.Ticket](form.WithServices(testsupport.Services()), form.WithFields("urgent", "subject"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got, err := r.Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "urgent;subject;" {
		t.Fatalf("got %q", got)
	}

	if _, err := New(WithTemplates(fstest.MapFS{}), WithTemplateName("missing.tpl")); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil form")
	}
}
