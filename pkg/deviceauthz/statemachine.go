package deviceauthz

// State is the authorization state of a (customer, trust token) pair.
type State int

const (
	// StateNoDevice means no record matches the presented token.
	StateNoDevice State = iota

	// StatePending means the record exists but the emailed code has not
	// been verified yet.
	StatePending

	// StateLocked means the failed-attempt threshold was reached and
	// only the recovery flow can clear it.
	StateLocked

	// StateAuthorized means the device passed the second factor.
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateNoDevice:
		return "no_device"
	case StatePending:
		return "pending"
	case StateLocked:
		return "locked"
	case StateAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// LockThreshold is the number of failed code attempts that locks a device.
const LockThreshold = 3

// StateOf derives the state from a record. Pass found=false when the
// token lookup came back empty.
func StateOf(auth DeviceAuthorization, found bool) State {
	switch {
	case !found:
		return StateNoDevice
	case auth.Status:
		return StateAuthorized
	case auth.Attempts >= LockThreshold:
		return StateLocked
	default:
		return StatePending
	}
}

// Outcome is the result of one verification attempt.
type Outcome int

const (
	// OutcomeCodeRejected: the code was wrong or could not be checked;
	// the caller surfaces a code error and the customer may retry.
	OutcomeCodeRejected Outcome = iota

	// OutcomeLocked: the attempt threshold is reached; the caller must
	// route to the unlock flow.
	OutcomeLocked

	// OutcomeAuthorized: the device is now trusted.
	OutcomeAuthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCodeRejected:
		return "code_rejected"
	case OutcomeLocked:
		return "locked"
	case OutcomeAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to persist after Evaluate.
type Decision struct {
	Outcome Outcome

	// IncrementAttempts: add one failed attempt to the record.
	IncrementAttempts bool

	// Authorize: set status true and reset the attempt counter.
	Authorize bool
}

// Evaluate is the pure transition function for one verification
// attempt. attempts is the record's counter before this attempt and
// codeOK whether the submitted code exactly matched the session code.
//
// Two deliberate subtleties, both preserved from observed production
// behavior:
//
//   - With no record there is no counter to increment; the outcome is
//     indistinguishable from a plain mismatch so an unauthenticated
//     probe cannot learn whether a trust record exists.
//
//   - The lock check runs independently of the code check. A correct
//     code submitted when attempts is already at LockThreshold-1 still
//     locks: three failures always lock, the third failure both counts
//     and locks, and a guess on the final attempt earns no authorization.
func Evaluate(state State, attempts int, codeOK bool) Decision {
	if state == StateNoDevice {
		return Decision{Outcome: OutcomeCodeRejected}
	}

	var d Decision
	if attempts <= LockThreshold-1 && !codeOK {
		d.Outcome = OutcomeCodeRejected
		d.IncrementAttempts = true
	}

	if attempts >= LockThreshold-1 {
		d.Outcome = OutcomeLocked
		return d
	}

	if d.IncrementAttempts {
		return d
	}

	d.Outcome = OutcomeAuthorized
	d.Authorize = true
	return d
}
