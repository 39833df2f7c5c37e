package bingo

// Lines holds every winning run on the grid: five rows, five columns and
// both diagonals, addressed row-major from 0 to 24.
var Lines = buildLines()

func buildLines() [][5]int {
	lines := make([][5]int, 0, 12)
	for r := range 5 {
		var line [5]int
		for c := range 5 {
			line[c] = r*5 + c
		}
		lines = append(lines, line)
	}
	for c := range 5 {
		var line [5]int
		for r := range 5 {
			line[r] = r*5 + c
		}
		lines = append(lines, line)
	}
	lines = append(lines, [5]int{0, 6, 12, 18, 24}, [5]int{4, 8, 12, 16, 20})
	return lines
}

// HasBingo reports whether marked fully covers at least one line.
func HasBingo(marked []int) bool {
	set := make(map[int]bool, len(marked))
	for _, i := range marked {
		set[i] = true
	}
	if len(set) < 5 {
		return false
	}

	for _, line := range Lines {
		complete := true
		for _, i := range line {
			if !set[i] {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

// lineBlocked reports whether any cell of line is locked by owner.
func lineBlocked(line [5]int, locks map[int]Lock, owner string) bool {
	for _, i := range line {
		if l, ok := locks[i]; ok && l.PlayerID == owner {
			return true
		}
	}
	return false
}

// BingoPossible reports whether either of two lock-out opponents can still
// complete a line. A line stays open for a player while none of its cells
// belongs to the other player; cells that are free or self-owned don't
// block it.
func BingoPossible(locks map[int]Lock, first, second string) bool {
	if first == "" || second == "" {
		return true
	}

	for _, line := range Lines {
		if !lineBlocked(line, locks, second) {
			return true
		}
		if !lineBlocked(line, locks, first) {
			return true
		}
	}
	return false
}
