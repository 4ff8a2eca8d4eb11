package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-modelform/pkg/form"
	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/state"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	asked        []Prompt
	confirmed    []Prompt
	fail         error
}

func next[T any](queue *[]T, what string) (T, error) {
	var zero T
	if len(*queue) == 0 {
		return zero, fmt.Errorf("no %s scripted", what)
	}
	val := (*queue)[0]
	*queue = (*queue)[1:]
	return val, nil
}

func (s *stubDriver) Ask(_ context.Context, p Prompt) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	switch {
	case p.Secret:
		return next(&s.passwords, "password")
	case p.Multiline:
		return next(&s.textAreas, "textarea")
	}
	s.asked = append(s.asked, p)
	val, err := next(&s.inputs, "input")
	if err == nil && val == "" {
		// survey answers an empty line with the default.
		val = p.Default
	}
	return val, err
}

func (s *stubDriver) Confirm(_ context.Context, p Prompt, _ bool) (bool, error) {
	s.confirmed = append(s.confirmed, p)
	return next(&s.confirm, "confirm")
}

func (s *stubDriver) Choose(_ context.Context, p Prompt) ([]int, error) {
	if p.Multiple {
		return next(&s.multiIdx, "multiselect")
	}
	idx, err := next(&s.selectIdx, "select")
	if err != nil {
		return nil, err
	}
	return []int{idx}, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type account struct {
	Name string `json:"name"`
	Age  int    `json:"age" jsonschema:"minimum=0"`
	Role string `json:"role" jsonschema:"enum=admin,enum=user"`
}

func newAccountForm(t *testing.T) *form.Form {
	t.Helper()
	m, err := model.Of[account]()
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	f, err := form.New("account", m, form.WithRegistry(state.NewRegistry()))
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	return f
}

func TestSubmitThroughPrompts(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "-1", "x", "30"},
		selectIdx: []int{1},
		confirm:   []bool{true},
	}
	var out bytes.Buffer
	h := New(WithPromptDriver(driver), WithOutput(&out))

	got, err := newAccountForm(t).Submit(context.Background(), h)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(&account{Name: "Ada", Age: 30, Role: "user"}, got); diff != "" {
		t.Fatalf("submitted value mismatch (-want +got):\n%s", diff)
	}
	want := []string{"Invalid Age: must be >= 0", "Invalid Age: not a number"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if driver.asked[1].Message != "Age [0..]" {
		t.Fatalf("expected bounds in the message, got %q", driver.asked[1].Message)
	}
	if driver.confirmed[0].Message != "Submit?" {
		t.Fatalf("unexpected submit prompt %q", driver.confirmed[0].Message)
	}
}

func TestAnswersBecomeDefaults(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "30", "", ""},
		selectIdx: []int{1, 1},
		confirm:   []bool{false, true},
	}
	h := New(WithPromptDriver(driver), WithOutput(&bytes.Buffer{}))
	f := newAccountForm(t)

	first, err := f.Submit(context.Background(), h)
	if err != nil || first != nil {
		t.Fatalf("expected no submission, got %v %v", first, err)
	}
	second, err := f.Submit(context.Background(), h)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if diff := cmp.Diff(&account{Name: "Ada", Age: 30, Role: "user"}, second); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if driver.asked[3].Default != "30" {
		t.Fatalf("expected remembered age default, got %q", driver.asked[3].Default)
	}
}

func TestAbortPropagates(t *testing.T) {
	driver := &stubDriver{fail: host.ErrAborted}
	h := New(WithPromptDriver(driver), WithOutput(&bytes.Buffer{}))
	if _, err := newAccountForm(t).Submit(context.Background(), h); !errors.Is(err, host.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestDisplayOutput(t *testing.T) {
	var out bytes.Buffer
	h := New(WithPromptDriver(&stubDriver{}), WithOutput(&out))

	h.Text(host.StyleSubheader, "Result")
	h.Text(host.StyleWarning, "careful")
	h.Text(host.StyleCode, "a\nb")
	h.JSON("Data", map[string]any{"k": 1})
	h.Table([]string{"name", "age"}, [][]string{{"Ada", "30"}})
	h.Download("Download File", "report.pdf", "application/pdf", []byte("%PDF"))

	want := strings.Join([]string{
		"## Result",
		"! careful",
		"    a",
		"    b",
		"Data:",
		"{",
		`  "k": 1`,
		"}",
		"name  age",
		"Ada   30",
		"Download File: report.pdf (4 bytes)",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFileUploadReadsPaths(t *testing.T) {
	files := map[string][]byte{"/tmp/a.png": {1, 2}, "/tmp/b.txt": {3}}
	driver := &stubDriver{inputs: []string{"/tmp/b.txt", "/tmp/a.png"}}
	h := New(
		WithPromptDriver(driver),
		WithOutput(&bytes.Buffer{}),
		WithFileReader(func(path string) ([]byte, error) {
			data, ok := files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return data, nil
		}),
	)

	got, err := h.FileUpload(context.Background(), host.Widget{Key: "k", Label: "Avatar"}, host.FileConfig{Accept: []string{".png"}})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := []host.UploadedFile{{Name: "a.png", MIMEType: "image/png", Data: []byte{1, 2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("upload mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], "Invalid Avatar: b.txt is not one of .png") {
		t.Fatalf("expected extension rejection, got %v", driver.infoMessages)
	}
}

func TestDateAndTimeKeepOtherParts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"2024-02-03", "bad", "09:15"}}
	h := New(WithPromptDriver(driver), WithOutput(&bytes.Buffer{}))
	base := mustTime(t, "2020-01-01T10:20:30Z")

	day, err := h.DateInput(context.Background(), host.Widget{Key: "d", Label: "Day"}, base)
	if err != nil {
		t.Fatalf("date: %v", err)
	}
	if got := day.Format("2006-01-02T15:04:05Z07:00"); got != "2024-02-03T10:20:30Z" {
		t.Fatalf("unexpected date %s", got)
	}
	clock, err := h.TimeInput(context.Background(), host.Widget{Key: "t", Label: "Time"}, base)
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if got := clock.Format("2006-01-02T15:04:05Z07:00"); got != "2020-01-01T09:15:00Z" {
		t.Fatalf("unexpected time %s", got)
	}
}

func TestPromptKinds(t *testing.T) {
	driver := &stubDriver{
		passwords: []string{"s3cret"},
		textAreas: []string{"line one\nline two"},
		multiIdx:  [][]int{{0, 2}},
		selectIdx: []int{7},
	}
	h := New(WithPromptDriver(driver), WithOutput(&bytes.Buffer{}), WithPageSize(5))
	ctx := context.Background()

	secret, err := h.TextInput(ctx, host.Widget{Key: "p", Label: "Password"}, host.TextConfig{Password: true})
	if err != nil || secret != "s3cret" {
		t.Fatalf("password: %q %v", secret, err)
	}
	notes, err := h.TextArea(ctx, host.Widget{Key: "n", Label: "Notes"}, host.TextConfig{})
	if err != nil || notes != "line one\nline two" {
		t.Fatalf("textarea: %q %v", notes, err)
	}
	picked, err := h.MultiSelect(ctx, host.Widget{Key: "m", Label: "Tags"}, host.SelectConfig{Options: []string{"a", "b", "c"}})
	if err != nil {
		t.Fatalf("multiselect: %v", err)
	}
	if diff := cmp.Diff([]int{0, 2}, picked); diff != "" {
		t.Fatalf("multiselect mismatch (-want +got):\n%s", diff)
	}
	// an index outside the options keeps the current choice
	idx, err := h.Select(ctx, host.Widget{Key: "s", Label: "Size"}, host.SelectConfig{Options: []string{"s", "m"}, Index: 1})
	if err != nil || idx != 1 {
		t.Fatalf("select: %d %v", idx, err)
	}
	if len(driver.asked) != 0 {
		t.Fatalf("secret and multi-line prompts are not line inputs, got %v", driver.asked)
	}
}

func TestOptionLabelsAndPositions(t *testing.T) {
	options := []string{"red", "green", "blue"}
	if diff := cmp.Diff([]string{"red", "blue"}, optionsAt(options, []int{0, 5, 2, -1})); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 2}, positions(options, "blue", "red", "pink")); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	if got := positions(options); got != nil {
		t.Fatalf("expected no positions, got %v", got)
	}
}

func mustTime(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return parsed
}
