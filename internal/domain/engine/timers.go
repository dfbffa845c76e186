// Package engine implements the in-room Game Engine: the day/night
// phase state machine, the night resolver, the voting/trial subsystem,
// and the evening hooks, driving entity.Room/entity.Player state exactly
// as spec.md §4.3-§4.6 describes.
package engine

import "time"

// TimerTable gives the countdown (in seconds) for each timed phase.
// Production and debug tables are both named in spec.md §4.3.
type TimerTable map[string]time.Duration

var ProdTimers = TimerTable{
	"NICKNAME_SELECTION": 30 * time.Second,
	"DISCUSSION":         36 * time.Second,
	"VOTE":               120 * time.Second,
	"ELECTION":           5 * time.Second,
	"DEFENSE":            10 * time.Second,
	"VOTE_EXECUTION":     15 * time.Second,
	"LAST_WORDS":         5 * time.Second,
	"EVENING":            36 * time.Second,
	"NIGHT_SLEEP":        5 * time.Second,
}

var DebugTimers = TimerTable{
	"NICKNAME_SELECTION": 5 * time.Second,
	"DISCUSSION":         3 * time.Second,
	"VOTE":               3 * time.Second,
	"ELECTION":           3 * time.Second,
	"DEFENSE":            3 * time.Second,
	"VOTE_EXECUTION":     10 * time.Second,
	"LAST_WORDS":         3 * time.Second,
	"EVENING":            3 * time.Second,
	"NIGHT_SLEEP":        1 * time.Second,
}

// Announcements are the remaining-seconds marks a countdown broadcasts
// a TIME event at, per spec.md §4.3.
var Announcements = []time.Duration{60 * time.Second, 30 * time.Second, 10 * time.Second, 5 * time.Second}
