// Package shadercompat turns untrusted Shadertoy-style fragment shader
// snippets into complete, linkable GLSL programs. Validation and conversion
// are pure string transforms with no GL dependency, so they can run (and be
// tested) without a graphics context.
package shadercompat

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationResult reports whether a shader body is safe to wrap and compile.
// Error is fatal and prevents compilation; Warnings are advisory only.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ReservedUniforms are declared by Convert and must not be redeclared by the
// shader body.
var ReservedUniforms = []string{"iResolution", "iTime", "iTimeDelta", "iFrame", "iMouse", "iDate"}

// Advisory messages form a closed set; the UI displays them verbatim.
const (
	warnStaticShader = "shader does not reference iTime; the output will not animate"
	warnLargeBody    = "shader body is unusually large; expect long compile times and possible performance issues"
	warnUsesDiscard  = "shader uses discard, which may interact badly with blending"
)

// largeBodyThreshold is the advisory size cutoff in bytes.
const largeBodyThreshold = 64 * 1024

var (
	// Signature-shaped match for the entry point, accepting the out/in
	// parameters in either order. Comments are not stripped first, so a
	// signature that only appears inside a comment still matches.
	mainImageRe = regexp.MustCompile(`\bmainImage\s*\(\s*(?:out\s+vec4\s+\w+\s*,\s*in\s+vec2\s+\w+|in\s+vec2\s+\w+\s*,\s*out\s+vec4\s+\w+)\s*\)`)

	// The optional precision qualifier covers ESSL-style declarations such
	// as "uniform highp vec3 iResolution;".
	reservedUniformRe = regexp.MustCompile(`\buniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(iResolution|iTime|iTimeDelta|iFrame|iMouse|iDate)\b`)
	mainFnRe          = regexp.MustCompile(`\bvoid\s+main\s*\(`)
	iTimeRe           = regexp.MustCompile(`\biTime\b`)
	discardRe         = regexp.MustCompile(`\bdiscard\b`)
)

// Validate checks a raw shader body for the mainImage entry point and for
// constructs that would break the generated standalone program. It never
// returns an error value; fatal problems come back as data so callers can
// render them inline.
func Validate(source string) ValidationResult {
	if strings.TrimSpace(source) == "" {
		return ValidationResult{Error: "Shader code is required"}
	}

	if !mainImageRe.MatchString(source) {
		return ValidationResult{Error: "Missing required mainImage(out vec4 fragColor, in vec2 fragCoord) function"}
	}

	if m := reservedUniformRe.FindStringSubmatch(source); m != nil {
		return ValidationResult{Error: fmt.Sprintf("Shader redeclares the reserved uniform %q", m[1])}
	}

	if mainFnRe.MatchString(source) {
		return ValidationResult{Error: `Shader must not define "main"; the generated program supplies its own entry point`}
	}

	var warnings []string
	if !iTimeRe.MatchString(source) {
		warnings = append(warnings, warnStaticShader)
	}
	if len(source) > largeBodyThreshold {
		warnings = append(warnings, warnLargeBody)
	}
	if discardRe.MatchString(source) {
		warnings = append(warnings, warnUsesDiscard)
	}

	return ValidationResult{Valid: true, Warnings: warnings}
}

// The generated program targets WebGL1-flavoured ESSL so gl_FragColor is
// available; the renderer runs it through ANGLE to reach desktop GLSL.
const programPreamble = `#version 100
precision highp float;
precision highp int;

uniform vec3  iResolution;
uniform float iTime;
uniform float iTimeDelta;
uniform int   iFrame;
uniform vec4  iMouse;
uniform vec4  iDate;
`

const programMain = `
void main() {
    vec4 fragColor;
    mainImage(fragColor, gl_FragCoord.xy);
    gl_FragColor = fragColor;
}
`

// Convert wraps a shader body into a complete fragment program: preamble,
// standard uniform block, the body verbatim, then a synthesized main that
// forwards gl_FragCoord to mainImage. It does not re-validate; an absent
// mainImage surfaces later as a compile error from the graphics layer.
func Convert(source string) string {
	var b strings.Builder
	b.Grow(len(programPreamble) + len(source) + len(programMain) + 1)
	b.WriteString(programPreamble)
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(programMain)
	return b.String()
}

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
void main() {
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// VertexShader returns the fullscreen-quad vertex stage paired with every
// converted fragment program.
func VertexShader() string {
	return vertexShaderSource
}
