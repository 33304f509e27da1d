// Package jobs holds the background job vocabulary: job type names, the
// retry policy and the transient-error classification shared by handlers.
package jobs

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

const (
	TypeSuggestClips       = "suggest_clips"
	TypeGenerateEmbeddings = "generate_embeddings"
)

// Policy is the exponential backoff schedule for retryable job failures.
type Policy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Jitter      time.Duration
}

func PolicyFromEnv(log *logger.Logger) Policy {
	return Policy{
		MaxRetries:  utils.GetEnvAsInt("JOB_MAX_RETRIES", 5, log),
		BackoffBase: time.Duration(utils.GetEnvAsInt("JOB_RETRY_BACKOFF_BASE_SECONDS", 5, log)) * time.Second,
		BackoffMax:  time.Duration(utils.GetEnvAsInt("JOB_RETRY_BACKOFF_MAX_SECONDS", 300, log)) * time.Second,
		Jitter:      time.Duration(utils.GetEnvAsInt("JOB_RETRY_JITTER_SECONDS", 3, log)) * time.Second,
	}
}

// Delay returns the wait before attempt retries+1: min(max, base*2^retries)
// plus uniform jitter.
func (p Policy) Delay(retries int) time.Duration {
	base := p.BackoffBase
	if base < time.Second {
		base = time.Second
	}
	max := p.BackoffMax
	if max < base {
		max = base
	}
	delay := base
	for i := 0; i < retries; i++ {
		delay *= 2
		if delay >= max {
			delay = max
			break
		}
	}
	if delay > max {
		delay = max
	}
	if p.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return delay
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks an error as retryable regardless of its underlying type.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether a failure is worth another attempt: network
// problems, timeouts, and anything explicitly marked Transient. Domain errors
// (missing sermon, empty transcript, no candidates) are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE, syscall.ETIMEDOUT} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
