package usecase

import (
	"strings"

	secretsDomain "github.com/allisson/envsecrets/internal/secrets/domain"
)

type referenceKind int

const (
	localReference referenceKind = iota
	crossEnvReference
	crossAppReference
)

// reference is one ${...} placeholder found in a value.
type reference struct {
	start, end int // byte offsets of the whole placeholder in the scanned value
	inner      string
	kind       referenceKind
	app        string
	env        string
	path       string
	key        string
}

func (r reference) String() string {
	return "${" + r.inner + "}"
}

// scanReferences returns the placeholders of value in order of appearance.
// Double-brace ${{...}} spans belong to external templating and are skipped.
func scanReferences(value string) []reference {
	var refs []reference

	for i := 0; i < len(value); {
		offset := strings.Index(value[i:], "${")
		if offset < 0 {
			break
		}
		start := i + offset
		body := start + 2

		if body < len(value) && value[body] == '{' {
			closing := strings.Index(value[body+1:], "}}")
			if closing < 0 {
				// unclosed ${{ is literal text
				i = body + 1
				continue
			}
			i = body + 1 + closing + 2
			continue
		}

		closing := strings.IndexByte(value[body:], '}')
		if closing < 0 {
			break
		}
		end := body + closing + 1

		ref, ok := parseReference(value[body : body+closing])
		if !ok {
			i = body
			continue
		}
		ref.start, ref.end = start, end
		refs = append(refs, ref)
		i = end
	}

	return refs
}

// parseReference classifies the text between "${" and "}":
//
//	App::Env.path/KEY  cross-app
//	Env.path/KEY       cross-env, same app
//	path/KEY           local
func parseReference(inner string) (reference, bool) {
	if inner == "" || strings.ContainsAny(inner, "${ \t\r\n") {
		return reference{}, false
	}

	ref := reference{inner: inner, kind: localReference}
	target := inner

	if idx := strings.Index(inner, "::"); idx >= 0 {
		rest := inner[idx+2:]
		dot := strings.IndexByte(rest, '.')
		if idx == 0 || dot <= 0 {
			return reference{}, false
		}
		ref.kind = crossAppReference
		ref.app = inner[:idx]
		ref.env = rest[:dot]
		target = rest[dot+1:]
	} else if dot := strings.IndexByte(inner, '.'); dot >= 0 {
		if dot == 0 {
			return reference{}, false
		}
		ref.kind = crossEnvReference
		ref.env = inner[:dot]
		target = inner[dot+1:]
	}

	ref.path, ref.key = splitReferenceTarget(target)
	if ref.key == "" {
		return reference{}, false
	}
	return ref, true
}

// splitReferenceTarget splits "path/KEY" on the last slash. A bare key lives at "/".
func splitReferenceTarget(target string) (path, key string) {
	idx := strings.LastIndexByte(target, '/')
	if idx < 0 {
		return "/", target
	}
	return secretsDomain.NormalizePath(target[:idx]), target[idx+1:]
}

// splice replaces each reference that has a resolved value in one pass over
// the original value. Substituted text is never rescanned.
func splice(value string, refs []reference, resolved map[string]string) string {
	var b strings.Builder
	b.Grow(len(value))

	last := 0
	for _, ref := range refs {
		b.WriteString(value[last:ref.start])
		if plain, ok := resolved[ref.inner]; ok {
			b.WriteString(plain)
		} else {
			b.WriteString(value[ref.start:ref.end])
		}
		last = ref.end
	}
	b.WriteString(value[last:])

	return b.String()
}
