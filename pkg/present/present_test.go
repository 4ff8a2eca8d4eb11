package present

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/testsupport"
)

type dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type report struct {
	Title   string            `json:"title" jsonschema:"description=Report title"`
	Score   float64           `json:"score"`
	Notes   string            `json:"notes"`
	Labels  map[string]string `json:"labels"`
	Size    dimensions        `json:"size"`
	Extra   any               `json:"extra"`
	Chart   []byte            `json:"chart" jsonschema_extras:"mime_type=image/png"`
	Archive []byte            `json:"archive" jsonschema_extras:"mime_type=application/pdf"`
}

type banner struct {
	Text string `json:"text"`
}

func (b banner) RenderOutput(_ context.Context, h host.Host) error {
	h.Text(host.StylePlain, "banner: "+b.Text)
	return nil
}

type echo struct {
	Value string `json:"value"`
}

func (e echo) RenderOutputWithInput(_ context.Context, h host.Host, input any) error {
	h.Text(host.StylePlain, e.Value+" from "+input.(string))
	return nil
}

func TestRenderModelProperties(t *testing.T) {
	h := testsupport.NewHost()
	value := &report{
		Title:   "Weekly",
		Score:   0.5,
		Labels:  map[string]string{"team": "core"},
		Size:    dimensions{Width: 3, Height: 4},
		Extra:   []any{1, "two"},
		Chart:   []byte{0x89, 0x50},
		Archive: []byte{0x50, 0x4b},
	}
	if err := Render(context.Background(), h, value); err != nil {
		t.Fatalf("render: %v", err)
	}

	wantHeaders := []string{"Title", "Score", "Notes", "Labels", "Size", "Width", "Height", "Extra", "Chart", "Archive"}
	if diff := cmp.Diff(wantHeaders, h.Texts(host.StyleSubheader)); diff != "" {
		t.Fatalf("subheaders mismatch (-want +got):\n%s", diff)
	}
	wantCode := []string{"Weekly", "0.5", `{"team":"core"}`, "3", "4", "Extra"}
	if diff := cmp.Diff(wantCode, h.Texts(host.StyleCode)); diff != "" {
		t.Fatalf("code blocks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"No value returned!"}, h.Texts(host.StyleInfo)); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Report title"}, h.Texts(host.StyleMarkdown)); diff != "" {
		t.Fatalf("descriptions mismatch (-want +got):\n%s", diff)
	}
	if extra, ok := h.JSONValue("Extra"); !ok || cmp.Diff([]any{float64(1), "two"}, extra) != "" {
		t.Fatalf("expected Extra as JSON, got %v", extra)
	}
	if diff := cmp.Diff([]host.MediaKind{host.MediaImage}, h.MediaKinds()); diff != "" {
		t.Fatalf("media mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Download File: archive.pdf"}, h.Texts(host.StylePlain)); diff != "" {
		t.Fatalf("download mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderListAsTable(t *testing.T) {
	h := testsupport.NewHost()
	items := []dimensions{{Width: 1, Height: 2}, {Width: 3, Height: 4}}
	if err := Render(context.Background(), h, items); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := [][][]string{{{"width", "height"}, {"1", "2"}, {"3", "4"}}}
	if diff := cmp.Diff(want, h.Tables()); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderListRejectsMixedItems(t *testing.T) {
	h := testsupport.NewHost()
	err := Render(context.Background(), h, []any{dimensions{}, report{}})
	if !errors.Is(err, ErrCannotRenderList) {
		t.Fatalf("expected ErrCannotRenderList, got %v", err)
	}
	if diff := cmp.Diff([]string{"Cannot render output list"}, h.Texts(host.StyleError)); diff != "" {
		t.Fatalf("error indicator mismatch (-want +got):\n%s", diff)
	}
	if len(h.Tables()) != 0 {
		t.Fatalf("no partial table expected")
	}
}

func TestRenderRejectsScalars(t *testing.T) {
	h := testsupport.NewHost()
	if err := Render(context.Background(), h, 42); !errors.Is(err, ErrCannotRender) {
		t.Fatalf("expected ErrCannotRender, got %v", err)
	}
	if diff := cmp.Diff([]string{"Cannot render output"}, h.Texts(host.StyleError)); diff != "" {
		t.Fatalf("error indicator mismatch (-want +got):\n%s", diff)
	}
}

func TestOutputHooks(t *testing.T) {
	h := testsupport.NewHost()
	if err := Render(context.Background(), h, banner{Text: "hi"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := Render(context.Background(), h, echo{Value: "pong"}, WithInput("ping")); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := Render(context.Background(), h, []any{banner{Text: "row"}}); err != nil {
		t.Fatalf("render list: %v", err)
	}
	want := []string{"banner: hi", "pong from ping", "banner: row"}
	if diff := cmp.Diff(want, h.Texts(host.StylePlain)); diff != "" {
		t.Fatalf("hook output mismatch (-want +got):\n%s", diff)
	}
}

func TestDownloadName(t *testing.T) {
	cases := []struct {
		title, mimeType, want string
	}{
		{"Monthly Report", "", "monthly-report"},
		{"Data", "application/json", "data.json"},
	}
	for _, tc := range cases {
		if got := DownloadName(tc.title, tc.mimeType); got != tc.want {
			t.Fatalf("DownloadName(%q, %q) = %q, want %q", tc.title, tc.mimeType, got, tc.want)
		}
	}
}
