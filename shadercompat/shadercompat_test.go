package shadercompat

import (
	"strings"
	"testing"
)

const basicShader = `void mainImage(out vec4 fragColor, in vec2 fragCoord){ fragColor = vec4(1.0);}`

func TestValidateBasicShader(t *testing.T) {
	res := Validate(basicShader)
	if !res.Valid {
		t.Fatalf("expected valid result, got error %q", res.Error)
	}
	// The body never touches iTime, so the static-shader advisory applies.
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "iTime") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a static-shader warning, got %v", res.Warnings)
	}
}

func TestValidateEmpty(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		res := Validate(src)
		if res.Valid {
			t.Fatalf("Validate(%q) accepted empty input", src)
		}
		if res.Error != "Shader code is required" {
			t.Errorf("Validate(%q) error = %q", src, res.Error)
		}
	}
}

func TestValidateMissingMainImage(t *testing.T) {
	res := Validate("void foo(){}")
	if res.Valid {
		t.Fatal("shader without mainImage was accepted")
	}
	if !strings.Contains(res.Error, "mainImage") {
		t.Errorf("error %q does not mention mainImage", res.Error)
	}
}

func TestValidateParameterOrder(t *testing.T) {
	cases := []struct {
		name string
		src  string
		ok   bool
	}{
		{"canonical", "void mainImage(out vec4 c, in vec2 p){c=vec4(iTime);}", true},
		{"swapped", "void mainImage(in vec2 p, out vec4 c){c=vec4(iTime);}", true},
		{"loose whitespace", "void mainImage ( out vec4 c ,\n in vec2 p ){c=vec4(iTime);}", true},
		{"wrong types", "void mainImage(out vec3 c, in vec2 p){}", false},
		{"missing qualifier", "void mainImage(vec4 c, vec2 p){}", false},
	}
	for _, tc := range cases {
		res := Validate(tc.src)
		if res.Valid != tc.ok {
			t.Errorf("%s: Valid = %v, want %v (error %q)", tc.name, res.Valid, tc.ok, res.Error)
		}
	}
}

func TestValidateReservedUniforms(t *testing.T) {
	for _, name := range ReservedUniforms {
		src := "uniform float " + name + ";\nvoid mainImage(out vec4 c, in vec2 p){c=vec4(iTime);}"
		res := Validate(src)
		if res.Valid {
			t.Errorf("redeclaration of %s was accepted", name)
			continue
		}
		if !strings.Contains(res.Error, name) {
			t.Errorf("error %q does not name the conflicting symbol %s", res.Error, name)
		}
	}
}

func TestValidateReservedUniformsWithPrecision(t *testing.T) {
	for _, qualifier := range []string{"lowp", "mediump", "highp"} {
		src := "uniform " + qualifier + " vec3 iResolution;\nvoid mainImage(out vec4 c, in vec2 p){c=vec4(iTime);}"
		res := Validate(src)
		if res.Valid {
			t.Errorf("%s-qualified redeclaration of iResolution was accepted", qualifier)
			continue
		}
		if !strings.Contains(res.Error, "iResolution") {
			t.Errorf("error %q does not name the conflicting symbol", res.Error)
		}
	}
}

func TestValidateUserMainCollision(t *testing.T) {
	src := basicShader + "\nvoid main() { mainImage(gl_FragColor, gl_FragCoord.xy); }"
	res := Validate(src)
	if res.Valid {
		t.Fatal("shader defining main was accepted")
	}
	if !strings.Contains(res.Error, "main") {
		t.Errorf("error %q does not name main", res.Error)
	}
}

func TestValidateDiscardWarning(t *testing.T) {
	src := "void mainImage(out vec4 c, in vec2 p){ if (p.x < 1.0) discard; c = vec4(iTime);}"
	res := Validate(src)
	if !res.Valid {
		t.Fatalf("unexpected error %q", res.Error)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "discard") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a discard warning, got %v", res.Warnings)
	}
}

func TestValidateLargeBody(t *testing.T) {
	src := basicShader + "\n// " + strings.Repeat("x", largeBodyThreshold)
	res := Validate(src)
	if !res.Valid {
		t.Fatalf("unexpected error %q", res.Error)
	}
	found := false
	for _, w := range res.Warnings {
		if w == warnLargeBody {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a large-body warning, got %v", res.Warnings)
	}
}

// A signature that only exists inside a comment still validates. The scanner
// deliberately does not strip comments first.
func TestValidateCommentedSignatureStillMatches(t *testing.T) {
	src := "// void mainImage(out vec4 fragColor, in vec2 fragCoord)\nfloat f(){return iTime;}"
	if res := Validate(src); !res.Valid {
		t.Errorf("commented signature rejected: %q", res.Error)
	}
}

func TestConvertDeterministic(t *testing.T) {
	a := Convert(basicShader)
	b := Convert(basicShader)
	if a != b {
		t.Fatal("Convert is not deterministic for identical input")
	}
}

func TestConvertScaffolding(t *testing.T) {
	out := Convert(basicShader)

	if !strings.Contains(out, basicShader) {
		t.Error("converted program does not contain the user body verbatim")
	}
	if got := strings.Count(out, "void main("); got != 1 {
		t.Errorf("converted program has %d main definitions, want 1", got)
	}
	for _, decl := range []string{
		"uniform vec3  iResolution;",
		"uniform float iTime;",
		"uniform float iTimeDelta;",
		"uniform int   iFrame;",
		"uniform vec4  iMouse;",
		"uniform vec4  iDate;",
	} {
		if !strings.Contains(out, decl) {
			t.Errorf("missing uniform declaration %q", decl)
		}
	}
	if !strings.Contains(out, "mainImage(fragColor, gl_FragCoord.xy)") {
		t.Error("wrapper does not forward gl_FragCoord to mainImage")
	}
	if !strings.Contains(out, "gl_FragColor = fragColor") {
		t.Error("wrapper does not assign gl_FragColor")
	}
	if !strings.HasPrefix(out, "#version") {
		t.Error("converted program does not start with a version preamble")
	}
}

func TestConvertUniformOrderFixed(t *testing.T) {
	out := Convert(basicShader)
	last := -1
	for _, name := range ReservedUniforms {
		idx := strings.Index(out, name)
		if idx < 0 {
			t.Fatalf("uniform %s missing from output", name)
		}
		if idx < last {
			t.Fatalf("uniform %s out of order", name)
		}
		last = idx
	}
}
