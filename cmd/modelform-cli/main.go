// Command modelform-cli loads a JSON Schema or OpenAPI component, asks for
// every field in the terminal and prints the validated result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-modelform"
	"github.com/goliatone/go-modelform/internal/loader"
	"github.com/goliatone/go-modelform/pkg/form"
	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/host/snapshot"
	"github.com/goliatone/go-modelform/pkg/host/terminal"
	"github.com/goliatone/go-modelform/pkg/model"
	"github.com/goliatone/go-modelform/pkg/state"
)

// errTooManyAttempts is returned when the input never validates.
var errTooManyAttempts = errors.New("modelform-cli: input did not validate")

type app struct {
	stdout io.Writer
	stderr io.Writer
	driver terminal.PromptDriver
}

type flags struct {
	schema    string
	component string
	formID    string
	config    string
	output    string
	html      string
	preview   bool
	attempts  int
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		stdout: os.Stdout,
		stderr: os.Stderr,
		driver: terminal.NewSurveyDriver(os.Stderr),
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, host.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("modelform-cli: %v", err)
	}
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("modelform-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.schema, "schema", "", "JSON Schema or OpenAPI document path or URL")
	fs.StringVar(&f.component, "component", "", "components.schemas entry when -schema is an OpenAPI document")
	fs.StringVar(&f.formID, "form-id", "", "form identifier (random when empty)")
	fs.StringVar(&f.config, "config", "", "form config file (JSON or YAML)")
	fs.StringVar(&f.output, "output", "json", "result encoding: json or yaml")
	fs.StringVar(&f.html, "html", "", "write an HTML snapshot of the form to this file")
	fs.BoolVar(&f.preview, "preview", false, "skip prompting and only write the -html snapshot")
	fs.IntVar(&f.attempts, "attempts", 3, "submit attempts before giving up")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	f.schema = strings.TrimSpace(f.schema)
	if f.schema == "" {
		return flags{}, errors.New("-schema is required")
	}
	switch f.output {
	case "json", "yaml":
	default:
		return flags{}, fmt.Errorf("unknown -output %q (want json or yaml)", f.output)
	}
	if f.preview && f.html == "" {
		return flags{}, errors.New("-preview needs -html")
	}
	if f.attempts < 1 {
		f.attempts = 1
	}
	if f.formID == "" {
		f.formID = state.NewFormID()
	}
	return f, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	f, err := parseFlags(args, a.stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	src, err := loader.SourceFor(f.schema)
	if err != nil {
		return err
	}
	m, err := modelform.LoadModel(ctx, src, modelform.LoadOptions{
		Component: f.component,
		AllowHTTP: true,
	})
	if err != nil {
		return err
	}

	cfg := form.DefaultConfig()
	if f.config != "" {
		if cfg, err = form.LoadConfig(f.config); err != nil {
			return err
		}
	}
	registry := state.NewRegistry()
	opts := []form.Option{form.WithConfig(cfg), form.WithLogger(logger), form.WithRegistry(registry)}

	if f.preview {
		return a.writeSnapshot(ctx, f, m, opts, nil)
	}

	frm, err := form.New(f.formID, m, opts...)
	if err != nil {
		return err
	}
	term := terminal.New(terminal.WithPromptDriver(a.driver), terminal.WithOutput(a.stderr))

	var result any
	for attempt := 1; attempt <= f.attempts && result == nil; attempt++ {
		logger.Debug("form pass", "form", f.formID, "attempt", attempt)
		if result, err = frm.Submit(ctx, term); err != nil {
			return err
		}
	}
	if result == nil {
		return fmt.Errorf("%w after %d attempts", errTooManyAttempts, f.attempts)
	}

	if err := a.print(f.output, result); err != nil {
		return err
	}
	if f.html != "" {
		values, _ := result.(map[string]any)
		registry.Clear(f.formID)
		return a.writeSnapshot(ctx, f, m, opts, values)
	}
	return nil
}

func (a *app) print(format string, result any) error {
	var (
		payload []byte
		err     error
	)
	switch format {
	case "yaml":
		payload, err = yaml.Marshal(result)
	default:
		payload, err = json.MarshalIndent(result, "", "  ")
		payload = append(payload, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = a.stdout.Write(payload)
	return err
}

func (a *app) writeSnapshot(ctx context.Context, f flags, m *model.Model, opts []form.Option, values map[string]any) error {
	frm, err := form.New(f.formID, m, opts...)
	if err != nil {
		return err
	}
	h := snapshot.New(snapshot.WithTitle(m.Name()), snapshot.WithValues(values))
	if _, err := frm.Render(ctx, h); err != nil {
		return err
	}

	out, err := os.Create(f.html)
	if err != nil {
		return err
	}
	if err := h.Render(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "Snapshot written to %s\n", f.html)
	return nil
}
