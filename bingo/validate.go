package bingo

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength  = 20
	roomCodeLength = 4

	// placeholderName is what an unusable name collapses to; it is never
	// accepted as a real name.
	placeholderName = "Anonymous"
)

var (
	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	roomCodeForm = regexp.MustCompile(`^[A-Z0-9]{4}$`)
)

// SanitizeName strips markup, trims, and truncates a display name.
func SanitizeName(name string) (string, error) {
	name = htmlTag.ReplaceAllString(name, "")
	name = strings.NewReplacer("<", "", ">", "").Replace(name)
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	if name == "" || name == placeholderName {
		return "", ErrInvalidName
	}
	return name, nil
}

// NormalizeRoomCode trims and uppercases a code, rejecting anything that
// can't be a generated code.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !roomCodeForm.MatchString(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

// ValidateTileIndex accepts only a parsed index inside the grid.
func ValidateTileIndex(idx Index) (int, error) {
	if !idx.Valid || idx.N < 0 || idx.N >= BoardSize {
		return 0, ErrInvalidTile
	}
	return idx.N, nil
}

// ValidateMarked clamps a submitted marked list to BoardSize entries, then
// keeps the in-range indices in first-seen order without duplicates.
func ValidateMarked(marked Marks) []int {
	if len(marked) > BoardSize {
		marked = marked[:BoardSize]
	}

	seen := make(map[int]bool, len(marked))
	out := make([]int, 0, len(marked))
	for _, idx := range marked {
		n, err := ValidateTileIndex(idx)
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
