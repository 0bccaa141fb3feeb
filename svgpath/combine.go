package svgpath

import "fmt"

// samePoint compares points on the 26.6 fixed grid, so that
// end points closer than 1/64 unit are joined.
func samePoint(a, b Point) bool { return a.Fixed() == b.Fixed() }

// join tries to connect `other` to one end of `chain`,
// reversing it if needed.
func join(chain, other Path) (Path, bool) {
	switch {
	case samePoint(chain.EndPoint(), other.StartPoint()):
		return append(chain, other[1:]...), true
	case samePoint(chain.EndPoint(), other.EndPoint()):
		return append(chain, other.Reverse()[1:]...), true
	case samePoint(chain.StartPoint(), other.EndPoint()):
		return append(append(Path{}, other...), chain[1:]...), true
	case samePoint(chain.StartPoint(), other.StartPoint()):
		return append(other.Reverse(), chain[1:]...), true
	}
	return chain, false
}

// Combine merges the open paths of `paths` whose end points meet
// into longer paths, so that a laser cutter traces each chain in one go.
// Closed paths, and paths made of several subpaths, are returned unchanged.
// The output follows the order of the first member of each chain,
// and is never longer than the input.
func (Converter) Combine(paths []string) ([]string, error) {
	parsed := make([]Path, len(paths)) // nil for paths which are not merged
	for i, s := range paths {
		path, err := CompilePath(s)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", s, err)
		}
		if subs := path.Subpaths(); len(subs) == 1 && !subs[0].IsClosed() && len(subs[0]) > 1 {
			parsed[i] = subs[0]
		}
	}

	used := make([]bool, len(paths))
	out := make([]string, 0, len(paths))
	for i, s := range paths {
		if used[i] {
			continue
		}
		used[i] = true
		if parsed[i] == nil {
			out = append(out, s)
			continue
		}

		chain := append(Path{}, parsed[i]...)
		merged := false
		for found := true; found; {
			found = false
			for j, other := range parsed {
				if used[j] || other == nil {
					continue
				}
				if chain, found = join(chain, other); found {
					used[j], merged = true, true
					break
				}
			}
		}
		if merged {
			out = append(out, chain.ToSVGPath())
		} else {
			out = append(out, s)
		}
	}
	return out, nil
}
