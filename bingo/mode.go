/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

// Mode selects the challenge pool and the rule set used for a room.
type Mode string

const (
	ModeEasy        Mode = "easy"
	ModeHard        Mode = "hard"
	ModeLockOut     Mode = "lock-out"
	ModeLockOutEasy Mode = "lock-out-easy"
	ModeLockOutHard Mode = "lock-out-hard"
)

var validModes = []Mode{ModeEasy, ModeHard, ModeLockOut, ModeLockOutEasy, ModeLockOutHard}

// ParseMode returns the matching mode, or ModeEasy for anything unrecognized.
func ParseMode(s string) Mode {
	for _, m := range validModes {
		if string(m) == s {
			return m
		}
	}
	return ModeEasy
}

// LockOut reports whether tiles are claimed exclusively rather than toggled.
func (m Mode) LockOut() bool {
	return m == ModeLockOut || m == ModeLockOutEasy || m == ModeLockOutHard
}

// Base maps a mode onto the difficulty it draws challenges from.
func (m Mode) Base() Mode {
	switch m {
	case ModeHard, ModeLockOutHard:
		return ModeHard
	default:
		return ModeEasy
	}
}

// Grade is the lowest route colour a room expects players to climb.
type Grade string

const (
	GradePink   Grade = "pink"
	GradeYellow Grade = "yellow"
	GradeGreen  Grade = "green"
	GradeOrange Grade = "orange"
	GradeBlue   Grade = "blue"
)

// TopGrade is the hardest tier; some challenges are impossible at it.
const TopGrade = GradePink

var validGrades = []Grade{GradePink, GradeYellow, GradeGreen, GradeOrange, GradeBlue}

// ParseGrade returns the matching grade, or GradeGreen for anything unrecognized.
func ParseGrade(s string) Grade {
	for _, g := range validGrades {
		if string(g) == s {
			return g
		}
	}
	return GradeGreen
}
