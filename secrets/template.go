package secrets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/grezar/secretreplace/roles"
)

const (
	FuncSSMPath = "ssm_path"
	FuncGetSSM  = "get_ssm"
)

const (
	quotedArg = `(?:'([^']*)'|"([^"]*)")`
	envArg    = `(?:env\s*=\s*)?` + quotedArg

	// Whitespace removed next to a {{- or -}} marker.
	trimSet = " \t\r\n"
)

// Matches {{ ssm_path('p') }}, {{ ssm_path('p', 'env') }},
// {{ ssm_path('p', env='env') }}, {{ 'p' | get_ssm }} and
// {{ 'p' | get_ssm('env') }}, with optional {{- and -}} markers.
var referencePattern = regexp.MustCompile(
	`\{\{(-?)\s*(?:` +
		FuncSSMPath + `\(\s*` + quotedArg + `\s*(?:,\s*` + envArg + `\s*)?\)` +
		`|` +
		quotedArg + `\s*\|\s*` + FuncGetSSM + `(?:\(\s*` + envArg + `\s*\))?` +
		`)\s*(-?)\}\}`)

// An expression naming a secret function that referencePattern rejected.
var unrecognizedPattern = regexp.MustCompile(`\{\{[^}]*\b(?:` + FuncSSMPath + `|` + FuncGetSSM + `)\b[^}]*(?:\}\}|$)`)

// Reference is a secret lookup found in a template. Start and End are byte
// offsets of the whole expression, braces included.
type Reference struct {
	Start     int
	End       int
	Line      int
	Func      string
	Path      string
	Env       roles.Environment
	HasEnv    bool
	TrimLeft  bool
	TrimRight bool
}

// UnrecognizedError is returned for an expression that calls a secret
// function in a form Scan does not understand.
type UnrecognizedError struct {
	Line int
	Expr string
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("line %d: unsupported secret expression %s", e.Line, e.Expr)
}

// Substitution records a reference that was replaced. It never holds the
// secret value.
type Substitution struct {
	Line int
	Path string
	Env  roles.Environment
}

// EnvFunc picks the environment for a reference that does not name one.
type EnvFunc func(path string) roles.Environment

// EnvFromPath uses the second path segment, "/dev/app/x" -> "dev".
func EnvFromPath(path string) roles.Environment {
	return roles.Environment(roles.Label(path))
}

func FixedEnv(env roles.Environment) EnvFunc {
	return func(string) roles.Environment {
		return env
	}
}

func lineAt(tmpl string, offset int) int {
	return strings.Count(tmpl[:offset], "\n") + 1
}

// Scan returns the secret references in tmpl in document order. Other
// {{ ... }} expressions are left alone, but one that mentions ssm_path or
// get_ssm without matching a supported form is an error.
func Scan(tmpl string) ([]Reference, error) {
	matches := referencePattern.FindAllStringSubmatchIndex(tmpl, -1)
	refs := make([]Reference, 0, len(matches))
	last := 0
	for _, m := range matches {
		if err := checkGap(tmpl, last, m[0]); err != nil {
			return nil, err
		}
		last = m[1]

		group := func(groups ...int) (string, bool) {
			for _, g := range groups {
				if m[2*g] >= 0 {
					return tmpl[m[2*g]:m[2*g+1]], true
				}
			}
			return "", false
		}

		ref := Reference{
			Start:     m[0],
			End:       m[1],
			Line:      lineAt(tmpl, m[0]),
			TrimLeft:  m[3] > m[2],
			TrimRight: m[21] > m[20],
		}
		if path, ok := group(2, 3); ok {
			ref.Func = FuncSSMPath
			ref.Path = path
			env, ok := group(4, 5)
			ref.Env, ref.HasEnv = roles.Environment(env), ok
		} else {
			ref.Func = FuncGetSSM
			ref.Path, _ = group(6, 7)
			env, ok := group(8, 9)
			ref.Env, ref.HasEnv = roles.Environment(env), ok
		}
		refs = append(refs, ref)
	}
	if err := checkGap(tmpl, last, len(tmpl)); err != nil {
		return nil, err
	}
	return refs, nil
}

func checkGap(tmpl string, start, end int) error {
	loc := unrecognizedPattern.FindStringIndex(tmpl[start:end])
	if loc == nil {
		return nil
	}
	return &UnrecognizedError{
		Line: lineAt(tmpl, start+loc[0]),
		Expr: tmpl[start+loc[0] : start+loc[1]],
	}
}

// ExecuteTemplate replaces every reference in tmpl with the value returned
// by f. References are fetched one at a time and the first error aborts.
func ExecuteTemplate(ctx context.Context, tmpl string, f Fetcher, envFn EnvFunc) (string, []Substitution, error) {
	if envFn == nil {
		envFn = EnvFromPath
	}

	refs, err := Scan(tmpl)
	if err != nil {
		return "", nil, err
	}
	if len(refs) == 0 {
		return tmpl, nil, nil
	}

	writer := new(strings.Builder)
	subs := make([]Substitution, 0, len(refs))
	last := 0
	for _, ref := range refs {
		env := ref.Env
		if !ref.HasEnv {
			env = envFn(ref.Path)
		}
		value, err := f.Fetch(ctx, ref.Path, env)
		if err != nil {
			return "", nil, err
		}

		text := tmpl[last:ref.Start]
		if ref.TrimLeft {
			text = strings.TrimRight(text, trimSet)
		}
		writer.WriteString(text)
		writer.WriteString(value)

		last = ref.End
		if ref.TrimRight {
			for last < len(tmpl) && strings.IndexByte(trimSet, tmpl[last]) >= 0 {
				last++
			}
		}
		subs = append(subs, Substitution{Line: ref.Line, Path: ref.Path, Env: env})
	}
	writer.WriteString(tmpl[last:])
	return writer.String(), subs, nil
}
