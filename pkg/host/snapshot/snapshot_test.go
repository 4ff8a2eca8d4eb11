package snapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/form"
	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/state"
)

type account struct {
	Name string `json:"name" jsonschema:"description=Shown on <em>invoices</em><script>alert(1)</script>"`
	Age  int    `json:"age" jsonschema:"minimum=0"`
	Role string `json:"role" jsonschema:"enum=admin,enum=user"`
}

func renderAccount(t *testing.T, h *Host) map[string]any {
	t.Helper()
	m, err := model.Of[account]()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	f, err := form.New("account", m, form.WithRegistry(state.NewRegistry()))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	values, err := f.Render(context.Background(), h)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return values
}

func TestSnapshotAnswersFromValues(t *testing.T) {
	h := New(WithValues(map[string]any{
		"name": "<b>Ada</b>",
		"age":  36,
		"role": "user",
	}))
	got := renderAccount(t, h)

	want := map[string]any{"name": "<b>Ada</b>", "age": 36, "role": "user"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	role, ok := h.Root().Find("select", "role")
	if !ok {
		t.Fatalf("role select not recorded")
	}
	wantOptions := []Option{{Label: "admin"}, {Label: "user", Selected: true}}
	if diff := cmp.Diff(wantOptions, role.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotHTMLEscapesAndSanitizes(t *testing.T) {
	h := New(WithTitle("Account"), WithValues(map[string]any{"name": "<b>Ada</b>"}))
	renderAccount(t, h)
	h.Text(host.StyleMarkdown, `**bold** <a href="https://example.com" onclick="steal()">link</a><script>x()</script>`)

	page, err := h.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}

	for _, want := range []string{
		"<title>Account</title>",
		"&lt;b&gt;Ada&lt;/b&gt;",
		"Shown on <em>invoices</em>",
		`<a href="https://example.com"`,
		`<li class="mf-selected">admin</li>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
	for _, unwanted := range []string{"<script>", "onclick", "<b>Ada</b>"} {
		if strings.Contains(page, unwanted) {
			t.Errorf("page contains %q:\n%s", unwanted, page)
		}
	}
}

func TestSnapshotTheme(t *testing.T) {
	h := New(WithTheme(&theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		CSSVars: map[string]string{"--mf-fg": "#fff", "--mf-bg": "#000"},
		AssetURL: func(name string) string {
			return "/assets/" + name
		},
	}))
	h.Text(host.StylePlain, "hello")

	page, err := h.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{
		":root {\n--mf-bg: #000;\n--mf-fg: #fff;\n}",
		`<link rel="stylesheet" href="/assets/snapshot.stylesheet">`,
		`class="modelform theme-acme variant-dark"`,
		`<p class="mf-plain">hello</p>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestSnapshotLayout(t *testing.T) {
	h := New()
	slot := h.Placeholder()
	slot.Text(host.StylePlain, "removed item")
	slot.Clear()

	kept := h.Placeholder()
	kept.Text(host.StylePlain, "kept item")

	cols := h.Columns(2)
	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(cols))
	}
	pressed, err := cols[1].Button(context.Background(), host.Widget{Key: "k", Label: "Add Item"})
	if err != nil || pressed {
		t.Fatalf("button: pressed=%v err=%v", pressed, err)
	}

	h.Sidebar().Text(host.StyleCaption, "side note")
	h.Expander("Optional Fields", false).Text(host.StylePlain, "inside")

	page, err := h.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	if strings.Contains(page, "removed item") {
		t.Errorf("cleared slot rendered:\n%s", page)
	}
	for _, want := range []string{
		"kept item",
		`<div class="mf-columns"><div class="mf-column"></div>`,
		`<button type="button" data-key="k">Add Item</button>`,
		`<aside class="mf-sidebar"><p class="mf-caption">side note</p></aside>`,
		`<details class="mf-expander"><summary>Optional Fields</summary>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestSnapshotDisplay(t *testing.T) {
	h := New()
	h.JSON("Extra", []any{1, "two"})
	h.Media(host.MediaImage, "image/png", []byte{0x89})
	h.Download("Download File", "report.pdf", "application/pdf", []byte("%PDF"))
	h.Table([]string{"name", "age"}, [][]string{{"Ada", "36"}})

	page, err := h.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{
		"<figcaption>Extra</figcaption>",
		`<img class="mf-media" src="data:image/png;base64,iQ=="`,
		`download="report.pdf">Download File</a>`,
		"<th>name</th><th>age</th>",
		"<td>Ada</td><td>36</td>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}
