package bingo

import "math/rand/v2"

const (
	// BoardSize is the number of cells on the 5x5 grid.
	BoardSize = 25

	// CenterIndex is the middle cell, which is FREE on normal easy boards.
	CenterIndex = 12

	FreeSpace = "FREE"
	Filler    = "—"
)

var challenges = []string{
	"Pink tag -7 holds",
	"Yellow tag -5 holds",
	"Green tag -3 holds",
	"Bathang any hold",
	"Slab 🥰",
	"Dyno 🤮",
	"Scorpion every move",
	"Graysword Kilter 30°",
	"Climb, downclimb, climb",
	"Stacked feet",
	"Facing out start",
	"Campus anything",
	"4 repeats 4 min",
	"Dropknee",
	"Heel Hook",
	"Toe Hook",
	"Kneebar",
	"Figure 4",
	"Flash x3",
	"Eyes closed",
	"Half & Half",
	"1 Hand only",
	"No hands on a volume",
}

var hardChallenges = []string{
	"E-limb-ination",
	"Orange tag -1 hold",
	"Graysword Kilter 40°",
	"Campus",
	"Feet b4 hands",
}

// ChallengePool returns the unshuffled candidates for a board. The
// back-to-back and deadhang entries scale with difficulty, and the
// back-to-back entry is dropped at the top grade where nothing is left
// to climb below it.
func ChallengePool(mode Mode, minGrade Grade) []string {
	hard := mode.Base() == ModeHard

	pool := make([]string, 0, len(challenges)+len(hardChallenges)+2)
	pool = append(pool, challenges...)
	if hard {
		pool = append(pool, hardChallenges...)
	}

	if minGrade != TopGrade {
		if hard {
			pool = append(pool, "10 Pinks b2b")
		} else {
			pool = append(pool, "5 Pinks b2b")
		}
	}

	if hard {
		pool = append(pool, "Sloper deadhang 10s")
	} else {
		pool = append(pool, "Sloper deadhang 5s")
	}

	valid := pool[:0]
	for _, c := range pool {
		if c == "" || c == Filler {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

// GenerateBoard shuffles the pool for mode and minGrade and lays out exactly
// BoardSize cells, padding with Filler when the pool runs short. A nil rng
// uses the package-level source.
func GenerateBoard(mode Mode, minGrade Grade, rng *rand.Rand) []string {
	pool := ChallengePool(mode, minGrade)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	board := make([]string, BoardSize)
	for i := range board {
		if i < len(pool) {
			board[i] = pool[i]
		} else {
			board[i] = Filler
		}
	}

	if mode.Base() == ModeEasy && !mode.LockOut() {
		board[CenterIndex] = FreeSpace
	}

	return board
}
