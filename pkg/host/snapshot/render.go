package snapshot

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	json "github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var templatesFS embed.FS

type templates struct {
	element *pongo2.Template
	page    *pongo2.Template
}

var (
	templatesOnce sync.Once
	loaded        templates
	loadErr       error

	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy
)

func loadTemplates() (templates, error) {
	templatesOnce.Do(func() {
		set := pongo2.NewSet("modelform-snapshot", pongo2.NewFSLoader(templatesFS))
		if loaded.element, loadErr = set.FromFile("templates/element.tpl"); loadErr != nil {
			loadErr = fmt.Errorf("snapshot: parse element template: %w", loadErr)
			return
		}
		if loaded.page, loadErr = set.FromFile("templates/page.tpl"); loadErr != nil {
			loadErr = fmt.Errorf("snapshot: parse page template: %w", loadErr)
		}
	})
	return loaded, loadErr
}

func richSanitizer() *bluemonday.Policy {
	richPolicyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
	})
	return richPolicy
}

// sanitizeRich keeps user-generated markup from descriptions and markdown
// messages while dropping scripts and event handlers.
func sanitizeRich(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richSanitizer().Sanitize(trimmed))
}

// HTML renders the recorded document.
func (h *Host) HTML() (string, error) {
	var buf bytes.Buffer
	if err := h.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes the recorded document as a standalone HTML page.
func (h *Host) Render(w io.Writer) error {
	tpls, err := loadTemplates()
	if err != nil {
		return err
	}

	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()

	main, err := renderElement(tpls.element, h.doc.main)
	if err != nil {
		return err
	}
	sidebar := ""
	if len(h.doc.sidebar.Children) > 0 {
		if sidebar, err = renderElement(tpls.element, h.doc.sidebar); err != nil {
			return err
		}
	}

	ctx := pongo2.Context{
		"title":   h.doc.title,
		"sidebar": sidebar,
		"main":    main,
	}
	if cfg := h.doc.theme; cfg != nil {
		ctx["themeName"] = cfg.Theme
		ctx["variant"] = cfg.Variant
		ctx["cssVars"] = cssVarsStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			ctx["stylesheet"] = cfg.AssetURL("snapshot.stylesheet")
		}
	}
	if err := tpls.page.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("snapshot: execute page template: %w", err)
	}
	return nil
}

// renderElement renders children first so the element template never has to
// recurse.
func renderElement(tpl *pongo2.Template, el *Element) (string, error) {
	var children strings.Builder
	for _, child := range el.Children {
		out, err := renderElement(tpl, child)
		if err != nil {
			return "", err
		}
		children.WriteString(out)
		children.WriteString("\n")
	}

	rich := ""
	switch {
	case el.Kind == "message" && el.Style == "markdown":
		rich = sanitizeRich(el.Value)
	case el.Help != "":
		rich = sanitizeRich(el.Help)
	}

	out, err := tpl.Execute(pongo2.Context{
		"el":       el,
		"children": strings.TrimSuffix(children.String(), "\n"),
		"rich":     rich,
	})
	if err != nil {
		return "", fmt.Errorf("snapshot: render %s element: %w", el.Kind, err)
	}
	return strings.TrimSpace(out), nil
}

func prettyJSON(value any) string {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(payload)
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
