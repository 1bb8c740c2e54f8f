package exposure

import "fmt"

// Glob matching over entity identifiers. Patterns support * (any run),
// ? (single character), and bracket classes [abc] / [a-z] / [!abc].
// Matching is case-sensitive and anchored: the whole identifier must
// match. There is no escape character.

// MatchPattern reports whether the anchored glob pattern matches the
// entity identifier. Patterns must have passed ValidatePattern; a
// malformed bracket class never matches.
func MatchPattern(pattern, entityID string) bool {
	px, sx := 0, 0
	starPx, starSx := -1, -1

	for sx < len(entityID) {
		if px < len(pattern) {
			switch pattern[px] {
			case '?':
				px++
				sx++
				continue
			case '*':
				// Remember the star position for backtracking, then try
				// matching zero characters first.
				starPx, starSx = px, sx
				px++
				continue
			case '[':
				matched, next, ok := matchClass(pattern, px, entityID[sx])
				if ok && matched {
					px = next
					sx++
					continue
				}
			default:
				if pattern[px] == entityID[sx] {
					px++
					sx++
					continue
				}
			}
		}

		// Mismatch: extend the most recent star by one character.
		if starPx >= 0 {
			starSx++
			sx = starSx
			px = starPx + 1
			continue
		}
		return false
	}

	// Input consumed; remaining pattern may only be stars.
	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}

// matchClass evaluates the bracket class starting at pattern[start]
// (which is '[') against ch. next is the index just past the closing
// bracket. ok is false when the class is unterminated.
func matchClass(pattern string, start int, ch byte) (matched bool, next int, ok bool) {
	i := start + 1
	negate := false
	if i < len(pattern) && pattern[i] == '!' {
		negate = true
		i++
	}

	found := false
	first := true
	for i < len(pattern) {
		if pattern[i] == ']' && !first {
			if negate {
				found = !found
			}
			return found, i + 1, true
		}
		first = false

		lo := pattern[i]
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			hi := pattern[i+2]
			if lo <= ch && ch <= hi {
				found = true
			}
			i += 3
			continue
		}
		if lo == ch {
			found = true
		}
		i++
	}

	return false, 0, false
}

// MatchesAny reports whether any pattern matches the identifier.
// Pattern order is irrelevant to the result.
func MatchesAny(patterns []string, entityID string) bool {
	for _, p := range patterns {
		if MatchPattern(p, entityID) {
			return true
		}
	}
	return false
}

// ValidatePattern is a pure syntax check. It rejects unterminated
// bracket classes; malformed patterns must never reach matching.
func ValidatePattern(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '[' {
			continue
		}
		j := i + 1
		if j < len(pattern) && pattern[j] == '!' {
			j++
		}
		// A ']' immediately after the opener is a literal class member.
		if j < len(pattern) && pattern[j] == ']' {
			j++
		}
		for j < len(pattern) && pattern[j] != ']' {
			j++
		}
		if j >= len(pattern) {
			return fmt.Errorf("%w: unbalanced bracket in %q", ErrInvalidPattern, pattern)
		}
		i = j
	}
	return nil
}
