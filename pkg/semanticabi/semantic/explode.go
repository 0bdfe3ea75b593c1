package semantic

import (
	"strings"

	"github.com/hyperarc/semanticabi/pkg/semanticabi/abierr"
)

// Explode is a `@explode` annotation: an ordered list of dot-separated paths into a primary
// item's parameter tree, each naming an array parameter whose elements should each become their
// own output row. Every path explodes in lockstep with the others: ExplodeStep requires all of a
// row's exploded arrays to have the same length.
type Explode struct {
	paths     []string
	pathParts [][]string
}

// ExplodeFromJSON parses and validates every `@explode` path against the item's already-built
// semantic parameter tree(s) — a function's paths may root in either its input or output
// parameters, an event only ever has inputs. For each path, every intermediate segment must
// resolve to a non-excluded, non-array parameter (arrays may only appear at the very end of a
// path, and never as an array-of-arrays), and the terminal segment must itself be a
// non-array-of-arrays array.
func ExplodeFromJSON(paths []string, parameterSets ...*SemanticParameters) (*Explode, error) {
	if len(paths) == 0 {
		return nil, abierr.New("@explode must declare at least one path")
	}

	pathParts := make([][]string, 0, len(paths))
	for _, path := range paths {
		parts, err := validateExplodePath(path, parameterSets)
		if err != nil {
			return nil, err
		}
		pathParts = append(pathParts, parts)
	}

	return &Explode{paths: paths, pathParts: pathParts}, nil
}

func validateExplodePath(path string, parameterSets []*SemanticParameters) ([]string, error) {
	if path == "" {
		return nil, abierr.New("@explode path cannot be empty")
	}

	parts := strings.Split(path, ".")

	var current *SemanticParameters
	for _, params := range parameterSets {
		if params == nil {
			continue
		}
		if _, ok := params.Get(parts[0]); ok {
			current = params
			break
		}
	}
	if current == nil {
		return nil, abierr.New("@explode path %q: root parameter %q not found", path, parts[0])
	}

	for i, part := range parts {
		if current == nil {
			return nil, abierr.New("@explode path %q: %q has no components to descend into", path, strings.Join(parts[:i], "."))
		}

		semanticParam, ok := current.Get(part)
		if !ok {
			return nil, abierr.New("@explode path %q: unknown parameter %q", path, part)
		}
		if semanticParam.IsExcluded() {
			return nil, abierr.New("@explode path %q: %q is excluded", path, part)
		}

		param := semanticParam.Parameter()
		isLast := i == len(parts)-1

		if param.IsArrayOfArrays() {
			return nil, abierr.New("@explode path %q: %q is an array of arrays, which cannot be exploded", path, part)
		}

		if isLast {
			if !param.IsArray() {
				return nil, abierr.New("@explode path %q: terminal parameter %q is not an array", path, part)
			}
		} else if param.IsArray() {
			return nil, abierr.New("@explode path %q: %q is an array but is not the last path segment", path, part)
		}

		current = semanticParam.Components()
	}

	return parts, nil
}

// Paths is the ordered list of `@explode` paths.
func (e *Explode) Paths() []string { return e.paths }

// PathParts is the dot-split segments of each path, in the same order as Paths.
func (e *Explode) PathParts() [][]string { return e.pathParts }
