package repair

import "time"

const dateLayout = "2006-01-02"

type move string

const (
	moveDrop        move = "drop"
	moveQuickFinish move = "quick-finish"
)

// boardTransitions lists every status change the board itself can make.
// Any column may be dropped onto any other column; quick-finish only works
// from Ready for Pickup. Picked Up is reachable through the form alone.
var boardTransitions = map[move]map[Status]map[Status]bool{
	moveDrop: {
		StatusReceived:        allColumns(),
		StatusDiagnosing:      allColumns(),
		StatusWaitingForParts: allColumns(),
		StatusRepaired:        allColumns(),
		StatusReadyForPickup:  allColumns(),
		StatusFinished:        allColumns(),
	},
	moveQuickFinish: {
		StatusReadyForPickup: {StatusFinished: true},
	},
}

// arrivalEffects run whenever a board move lands a job in a status.
var arrivalEffects = map[Status]func(*Job, time.Time){
	StatusFinished: func(j *Job, _ time.Time) {
		j.Progress = 100
	},
}

// moveEffects run after arrival effects for a specific kind of move.
var moveEffects = map[move]func(*Job, time.Time){
	moveQuickFinish: func(j *Job, now time.Time) {
		j.EstimatedCompletion = now.Format(dateLayout)
	},
}

func allColumns() map[Status]bool {
	m := make(map[Status]bool, len(Columns))
	for _, s := range Columns {
		m[s] = true
	}
	return m
}

func canMove(m move, from, to Status) bool {
	return boardTransitions[m][from][to]
}

func applyMove(j *Job, m move, to Status, now time.Time) {
	j.Status = to
	if effect, ok := arrivalEffects[to]; ok {
		effect(j, now)
	}
	if effect, ok := moveEffects[m]; ok {
		effect(j, now)
	}
}
