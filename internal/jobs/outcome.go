package jobs

import "time"

type OutcomeKind int

const (
	OutcomeDone OutcomeKind = iota
	OutcomeRetry
	OutcomeFatal
)

// Outcome is the explicit result of one task attempt. Handlers decide the
// outcome; the job fabric persists it (succeed, requeue with wait_until, or
// terminal failure).
type Outcome struct {
	Kind   OutcomeKind
	Stage  string
	Result any
	Delay  time.Duration
	Err    error
}

func Done(stage string, result any) Outcome {
	return Outcome{Kind: OutcomeDone, Stage: stage, Result: result}
}

func Retry(stage string, delay time.Duration, err error) Outcome {
	return Outcome{Kind: OutcomeRetry, Stage: stage, Delay: delay, Err: err}
}

func Fatal(stage string, err error) Outcome {
	return Outcome{Kind: OutcomeFatal, Stage: stage, Err: err}
}

// Classify maps a task error to Retry or Fatal under this policy. attempts is
// the current attempt number (1-based), so attempts-1 retries are spent.
func (p Policy) Classify(stage string, attempts int, err error) Outcome {
	retries := attempts - 1
	if retries < 0 {
		retries = 0
	}
	if IsRetryable(err) && retries < p.MaxRetries {
		return Retry(stage, p.Delay(retries), err)
	}
	return Fatal(stage, err)
}
