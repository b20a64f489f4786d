// Package noise is a static library of GLSL noise snippets that can be
// prepended to a shader body before conversion, the same way Shadertoy's
// common pass shares helpers across passes.
package noise

import (
	"fmt"
	"sort"
	"strings"
)

const hashSource = `float sb_hash(vec2 p) {
    p = fract(p * vec2(123.34, 456.21));
    p += dot(p, p + 45.32);
    return fract(p.x * p.y);
}
`

const valueNoiseSource = `float sb_valueNoise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    vec2 u = f * f * (3.0 - 2.0 * f);
    float a = sb_hash(i);
    float b = sb_hash(i + vec2(1.0, 0.0));
    float c = sb_hash(i + vec2(0.0, 1.0));
    float d = sb_hash(i + vec2(1.0, 1.0));
    return mix(mix(a, b, u.x), mix(c, d, u.x), u.y);
}
`

const simplexSource = `vec2 sb_simplexGrad(vec2 p) {
    float a = sb_hash(p) * 6.2831853;
    return vec2(cos(a), sin(a));
}
float sb_simplex(vec2 p) {
    const float K1 = 0.3660254;
    const float K2 = 0.2113249;
    vec2 i = floor(p + (p.x + p.y) * K1);
    vec2 a = p - i + (i.x + i.y) * K2;
    vec2 o = (a.x > a.y) ? vec2(1.0, 0.0) : vec2(0.0, 1.0);
    vec2 b = a - o + K2;
    vec2 c = a - 1.0 + 2.0 * K2;
    vec3 h = max(0.5 - vec3(dot(a, a), dot(b, b), dot(c, c)), 0.0);
    vec3 n = h * h * h * h * vec3(dot(a, sb_simplexGrad(i)),
                                  dot(b, sb_simplexGrad(i + o)),
                                  dot(c, sb_simplexGrad(i + 1.0)));
    return dot(n, vec3(70.0));
}
`

const fbmSource = `float sb_fbm(vec2 p) {
    float v = 0.0;
    float amp = 0.5;
    for (int i = 0; i < 5; i++) {
        v += amp * sb_valueNoise(p);
        p *= 2.02;
        amp *= 0.5;
    }
    return v;
}
`

// snippets maps a name to its GLSL source and the other snippets it calls.
var snippets = map[string]struct {
	source   string
	requires []string
}{
	"hash":    {hashSource, nil},
	"value":   {valueNoiseSource, []string{"hash"}},
	"simplex": {simplexSource, []string{"hash"}},
	"fbm":     {fbmSource, []string{"hash", "value"}},
}

// Names lists the available snippets in sorted order.
func Names() []string {
	names := make([]string, 0, len(snippets))
	for name := range snippets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the GLSL source of a single snippet, without dependencies.
func Source(name string) (string, error) {
	s, ok := snippets[name]
	if !ok {
		return "", fmt.Errorf("unknown noise snippet %q", name)
	}
	return s.source, nil
}

// Prelude returns the concatenated sources for the requested snippets with
// dependencies resolved, each emitted once, ready to prepend to a shader body.
func Prelude(names ...string) (string, error) {
	var b strings.Builder
	emitted := make(map[string]bool)

	var emit func(name string) error
	emit = func(name string) error {
		if emitted[name] {
			return nil
		}
		s, ok := snippets[name]
		if !ok {
			return fmt.Errorf("unknown noise snippet %q", name)
		}
		for _, dep := range s.requires {
			if err := emit(dep); err != nil {
				return err
			}
		}
		emitted[name] = true
		b.WriteString(s.source)
		b.WriteByte('\n')
		return nil
	}

	for _, name := range names {
		if err := emit(name); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}
