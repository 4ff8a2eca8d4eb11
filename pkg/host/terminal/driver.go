package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-modelform/pkg/host"
)

// Prompt is one question put to the user. Which fields apply depends on the
// driver method receiving it.
type Prompt struct {
	Message string
	Help    string

	// Default pre-fills text answers.
	Default   string
	Secret    bool
	Multiline bool

	// Options and Selected drive Choose. Selected holds option indices.
	Options  []string
	Selected []int
	Multiple bool
	PageSize int
}

// PromptDriver abstracts the actual terminal implementation so the host can be
// tested without a real terminal and callers can swap implementations.
type PromptDriver interface {
	// Ask reads a line, a hidden secret or a multi-line text.
	Ask(ctx context.Context, p Prompt) (string, error)
	Confirm(ctx context.Context, p Prompt, fallback bool) (bool, error)
	// Choose returns the picked option indices; one index unless p.Multiple.
	Choose(ctx context.Context, p Prompt) ([]int, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the survey-backed driver. Info messages go to out.
func NewSurveyDriver(out io.Writer) PromptDriver {
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Ask(ctx context.Context, p Prompt) (string, error) {
	var (
		prompt survey.Prompt
		out    string
	)
	switch {
	case p.Secret:
		prompt = &survey.Password{Message: p.Message, Help: p.Help}
	case p.Multiline:
		prompt = &survey.Multiline{Message: p.Message, Help: p.Help, Default: p.Default}
	default:
		prompt = &survey.Input{Message: p.Message, Help: p.Help, Default: p.Default}
	}
	if err := ask(ctx, prompt, &out); err != nil {
		return "", err
	}
	// survey.Password has no default of its own
	if p.Secret && out == "" {
		out = p.Default
	}
	return out, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, p Prompt, fallback bool) (bool, error) {
	var out bool
	prompt := &survey.Confirm{Message: p.Message, Help: p.Help, Default: fallback}
	if err := ask(ctx, prompt, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (d *surveyDriver) Choose(ctx context.Context, p Prompt) ([]int, error) {
	var opts []survey.AskOpt
	if p.PageSize > 0 {
		opts = append(opts, survey.WithPageSize(p.PageSize))
	}
	preset := optionsAt(p.Options, p.Selected)

	if p.Multiple {
		var out []string
		prompt := &survey.MultiSelect{Message: p.Message, Help: p.Help, Options: p.Options}
		if len(preset) > 0 {
			prompt.Default = preset
		}
		if err := ask(ctx, prompt, &out, opts...); err != nil {
			return nil, err
		}
		return positions(p.Options, out...), nil
	}

	var out string
	prompt := &survey.Select{Message: p.Message, Help: p.Help, Options: p.Options}
	if len(preset) > 0 {
		prompt.Default = preset[0]
	}
	if err := ask(ctx, prompt, &out, opts...); err != nil {
		return nil, err
	}
	return positions(p.Options, out), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt. An interrupt becomes host.ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, answer any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return host.ErrAborted
	}
	return err
}

// positions maps picked labels back to option indices, in option order.
func positions(options []string, picked ...string) []int {
	want := make(map[string]bool, len(picked))
	for _, label := range picked {
		want[label] = true
	}
	var out []int
	for i, option := range options {
		if want[option] {
			out = append(out, i)
		}
	}
	return out
}

func optionsAt(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
