package form

import (
	"context"
	"sort"
	"strconv"

	"github.com/goliatone/go-modelform/pkg/host"
	"github.com/goliatone/go-modelform/pkg/schema"
	"github.com/goliatone/go-modelform/pkg/state"
)

// DefaultMaxItems caps collections that declare no upper bound.
const DefaultMaxItems = 1000

func upperBound(node schema.Node) int {
	if node.Type() == "object" {
		if limit, ok := node.Number("maxProperties"); ok {
			return int(limit)
		}
	}
	return node.Int("maxItems", DefaultMaxItems)
}

func lowerBound(node schema.Node) int {
	if node.Type() == "object" {
		if limit, ok := node.Number("minProperties"); ok {
			return int(limit)
		}
	}
	return node.Int("minItems", 0)
}

// AddAllowed reports whether one more entry may be added to a collection
// currently holding length entries.
func AddAllowed(node schema.Node, length int) bool {
	return !node.ReadOnly() && length < upperBound(node)
}

// RemoveDisabled reports whether the entry at index must stay. Entries within
// the minimum count can never be removed.
func RemoveDisabled(index int, node schema.Node) bool {
	return node.ReadOnly() || index+1 <= lowerBound(node)
}

// ClearAllowed reports whether a collection may be emptied at once.
func ClearAllowed(node schema.Node) bool {
	return !(node.ReadOnly() || lowerBound(node) > 0)
}

// collectionNode marks node read-only when an ancestor is.
func collectionNode(node schema.Node, fc fieldContext) schema.Node {
	if fc.readOnly && !node.ReadOnly() {
		node = node.Clone()
		node["readOnly"] = true
	}
	return node
}

// pressed renders a button and reports a press. Presses on disabled buttons
// and host failures count as no press.
func (p *pass) pressed(ctx context.Context, h host.Host, w host.Widget) bool {
	ok, err := h.Button(ctx, w)
	if err != nil {
		p.logger.Error("collection action failed", "key", w.Key, "action", w.Label, "error", err)
		return false
	}
	return ok && !w.Disabled
}

func (p *pass) button(path, label, suffix string, disabled bool) host.Widget {
	return host.Widget{
		Key:      p.session.WidgetKey(path, suffix),
		Path:     path,
		Label:    label,
		Disabled: disabled,
	}
}

func splitColumns(h host.Host, n int) []host.Host {
	cols := h.Columns(n)
	if len(cols) >= n {
		return cols
	}
	out := make([]host.Host, n)
	for i := range out {
		out[i] = h
	}
	return out
}

func (p *pass) listData(path string, node schema.Node, fc fieldContext) []any {
	if stored, ok := p.store.Get(path); ok {
		if items, ok := stored.([]any); ok {
			return append([]any(nil), items...)
		}
	}
	if items, ok := fc.init.([]any); ok {
		return append([]any(nil), items...)
	}
	if seed, ok := p.seed(node, fieldContext{def: fc.def, hasDef: fc.hasDef}); ok {
		if items, ok := seed.([]any); ok {
			return append([]any(nil), items...)
		}
	}
	return []any{}
}

func (p *pass) renderList(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	node = collectionNode(node, fc)
	items, err := schema.ItemsNode(node)
	if err != nil {
		return nil, err
	}
	label := p.label(node, fc)
	h.Text(host.StyleSubheader, label)
	if help := node.Description(); help != "" {
		h.Text(host.StyleMarkdown, help)
	}

	data := p.listData(path, node, fc)
	controls := splitColumns(h, 3)
	if p.pressed(ctx, controls[0], p.button(path, "Add Item", "list-add-item", !AddAllowed(node, len(data)))) {
		data = append(data, nil)
	}
	if p.pressed(ctx, controls[1], p.button(path, "Clear All", "list-clear-all", !ClearAllowed(node))) {
		data = []any{}
	}

	out := make([]any, 0, len(data))
	for i, item := range data {
		itemPath := path + "." + strconv.Itoa(i)
		slot := h.Placeholder()
		cols := splitColumns(slot, 2)
		if p.pressed(ctx, cols[1], p.button(itemPath, "Remove", "remove", RemoveDisabled(i, node))) {
			slot.Clear()
			continue
		}

		itemContext := fieldContext{
			label:    "Item #" + strconv.Itoa(i+1),
			isItem:   true,
			readOnly: node.ReadOnly(),
		}
		if schema.Present(item) {
			itemContext.init = item
		}
		value, err := p.dispatch(ctx, cols[0], itemPath, items, itemContext)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	h.Text(host.StyleDivider, "")
	return out, nil
}

func (p *pass) dictData(path string, node schema.Node, fc fieldContext) map[string]any {
	if stored, ok := p.store.Get(path); ok {
		if values, ok := stored.(map[string]any); ok {
			return copyMap(values)
		}
	}
	if values, ok := fc.init.(map[string]any); ok {
		return copyMap(values)
	}
	if seed, ok := p.seed(node, fieldContext{def: fc.def, hasDef: fc.hasDef}); ok {
		if values, ok := seed.(map[string]any); ok {
			return copyMap(values)
		}
	}
	return map[string]any{}
}

func copyMap(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = state.DeepCopy(value)
	}
	return out
}

// nextDictKey returns the first unused numeric key counting up from
// len(data)+1.
func nextDictKey(data map[string]any) string {
	for n := len(data) + 1; ; n++ {
		key := strconv.Itoa(n)
		if _, taken := data[key]; !taken {
			return key
		}
	}
}

// sortedKeys is the natural order of rows seen for the first time: numeric
// keys by value ahead of other keys, which sort lexically.
func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// rowKeys keeps rows in the order recorded on the previous pass. Keys without
// a recorded position follow in natural order.
func rowKeys(data map[string]any, prior []string) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]struct{}, len(data))
	for _, key := range prior {
		if _, ok := data[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, key := range sortedKeys(data) {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func (p *pass) renderDict(ctx context.Context, h host.Host, path string, node schema.Node, fc fieldContext) (any, error) {
	node = collectionNode(node, fc)
	label := p.label(node, fc)
	h.Text(host.StyleSubheader, label)
	if help := node.Description(); help != "" {
		h.Text(host.StyleMarkdown, help)
	}

	data := p.dictData(path, node, fc)
	keys := rowKeys(data, p.session.RowOrder(path))
	controls := splitColumns(h, 3)
	if p.pressed(ctx, controls[0], p.button(path, "Add Item", "dict-add-item", !AddAllowed(node, len(data)))) {
		key := nextDictKey(data)
		data[key] = nil
		keys = append(keys, key)
	}
	if p.pressed(ctx, controls[1], p.button(path, "Clear All", "dict-clear-all", !ClearAllowed(node))) {
		data = map[string]any{}
		keys = nil
	}

	valueNode := node.AdditionalProperties()
	readOnly := node.ReadOnly()
	out := make(map[string]any, len(data))
	order := make([]string, 0, len(keys))
	for i, key := range keys {
		rowPath := path + "." + strconv.Itoa(i)
		slot := h.Placeholder()
		cols := splitColumns(slot, 3)
		if p.pressed(ctx, cols[2], p.button(rowPath, "Remove", "remove", RemoveDisabled(i, node))) {
			slot.Clear()
			continue
		}

		keyPath := rowPath + ".key"
		newKey, err := cols[0].TextInput(ctx, host.Widget{
			Key:      p.session.WidgetKey(keyPath),
			Path:     keyPath,
			Label:    "Key",
			Disabled: readOnly,
		}, host.TextConfig{Value: key})
		if err != nil {
			return nil, err
		}
		if _, taken := out[newKey]; newKey == "" || taken {
			newKey = key
		}
		if _, taken := out[newKey]; taken {
			newKey = nextDictKey(out)
		}

		valueContext := fieldContext{label: "Value", isItem: true, readOnly: readOnly}
		if schema.Present(data[key]) {
			valueContext.init = data[key]
		}
		value, err := p.dispatch(ctx, cols[1], rowPath+".value", valueNode, valueContext)
		if err != nil {
			return nil, err
		}
		if value == nil {
			continue
		}
		out[newKey] = value
		order = append(order, newKey)
	}
	p.session.SetRowOrder(path, order)
	h.Text(host.StyleDivider, "")
	return out, nil
}
