package synth

// state is a step of the retry state machine.
//
//	attempt ──ok──▶ done
//	   │ failed
//	   ├─ round 1, auth signature ──▶ refresh ──▶ backoff ──▶ attempt
//	   ├─ round 1, other failure  ──────────────▶ backoff ──▶ attempt
//	   ├─ round 2                 ──▶ plain ──────────────────▶ attempt
//	   └─ plain round             ──▶ failed
type state int

const (
	stateAttempt state = iota
	stateRefresh
	stateBackoff
	statePlain
	stateFailed
)

// maxRounds is the number of rounds with the original request before the
// plain-text fallback.
const maxRounds = 2

func (s state) String() string {
	switch s {
	case stateAttempt:
		return "attempt"
	case stateRefresh:
		return "refresh"
	case stateBackoff:
		return "backoff"
	case statePlain:
		return "plain"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// nextState picks the transition after a failed round. rounds is the number
// of rounds run so far with the original request.
func nextState(rounds int, plain bool, err error) state {
	switch {
	case plain:
		return stateFailed
	case rounds < maxRounds && IsAuthFailure(err):
		return stateRefresh
	case rounds < maxRounds:
		return stateBackoff
	default:
		return statePlain
	}
}
