package template

import (
	"sort"
	"strings"
)

// Value is a template variable: a text substitution or a boolean section
// switch.
type Value struct {
	text   string
	truthy bool
	isBool bool
}

// Text wraps a string variable. Empty strings are falsy for section
// resolution.
func Text(s string) Value {
	return Value{text: s, truthy: s != ""}
}

// Flag wraps a boolean section switch.
func Flag(b bool) Value {
	return Value{truthy: b, isBool: true}
}

func (v Value) substitution() string {
	if v.isBool {
		if v.truthy {
			return "true"
		}
		return ""
	}
	return v.text
}

// Vars maps placeholder names to their values.
type Vars map[string]Value

// TextVars builds Vars from a plain string map.
func TextVars(m map[string]string) Vars {
	vars := make(Vars, len(m))
	for k, v := range m {
		vars[k] = Text(v)
	}
	return vars
}

// Merge overlays other on top of vars; other's keys win on conflict.
func (vars Vars) Merge(other Vars) Vars {
	merged := make(Vars, len(vars)+len(other))
	for k, v := range vars {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// Render substitutes placeholders in two ordered passes.
//
// Pass 1 replaces every {{KEY}} for each supplied key with the value's
// string form; keys are applied in sorted order so a render is
// reproducible for a fixed input. Unknown simple placeholders are left
// intact.
//
// Pass 2 resolves conditional sections {{#KEY}}...{{/KEY}} (non-greedy,
// newlines allowed): a truthy value keeps the body without the markers, a
// falsy or absent key removes the whole span. Absence hiding the section
// is the only implicit default.
//
// Values are inserted verbatim with no HTML escaping; callers own
// escaping for untrusted input.
func Render(tpl string, vars Vars) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := tpl
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{{"+k+"}}", vars[k].substitution())
	}

	return resolveSections(out, vars)
}

func resolveSections(tpl string, vars Vars) string {
	var b strings.Builder
	rest := tpl

	for {
		open := strings.Index(rest, "{{#")
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}

		nameEnd := strings.Index(rest[open+3:], "}}")
		if nameEnd < 0 {
			b.WriteString(rest)
			return b.String()
		}

		name := rest[open+3 : open+3+nameEnd]
		bodyStart := open + 3 + nameEnd + 2
		closeMarker := "{{/" + name + "}}"

		// First close marker after the opener; sections do not nest.
		closeIdx := strings.Index(rest[bodyStart:], closeMarker)
		if closeIdx < 0 {
			b.WriteString(rest[:bodyStart])
			rest = rest[bodyStart:]
			continue
		}

		b.WriteString(rest[:open])
		if vars[name].truthy {
			b.WriteString(rest[bodyStart : bodyStart+closeIdx])
		}
		rest = rest[bodyStart+closeIdx+len(closeMarker):]
	}
}
