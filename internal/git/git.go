// Package git wraps the subset of git subprocess invocations the fetcher
// needs: running arbitrary commands in a directory and shallow-cloning a
// remote with a timeout and authentication-failure detection.
package git

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// Run executes a git command in the given directory and returns trimmed
// combined output.
func Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// AuthError represents a git authentication failure, detected from the
// subprocess's stderr text rather than its exit code (git has no dedicated
// exit code for "access denied").
type AuthError struct {
	URL     string
	Message string
}

func (e *AuthError) Error() string {
	return "authentication failed for '" + e.URL + "': " + e.Message
}

// TimeoutError reports that a clone exceeded its allotted duration; the
// caller is responsible for removing the partial destination directory.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "git clone of '" + e.URL + "' exceeded " + e.Timeout.String()
}

// NotFoundError reports that git itself could not be located on PATH.
type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "git executable not found on PATH; install git to use remote marketplaces"
}

var authPatterns = []string{
	"Authentication failed",
	"Permission denied",
	"could not read Username",
	"could not read Password",
	"fatal: repository",
	"not found",
	"403",
	"401",
}

func isAuthFailure(output string) bool {
	for _, p := range authPatterns {
		if strings.Contains(output, p) {
			return true
		}
	}
	return false
}

// ShallowClone clones url into dst at depth 1, bounded by timeout. On a
// non-auth, non-timeout failure it returns the raw git error text wrapped
// in a plain error; callers (the fetcher) attach source context.
func ShallowClone(ctx context.Context, url, dst string, timeout time.Duration) error {
	if _, err := exec.LookPath("git"); err != nil {
		return &NotFoundError{}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dst)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return &TimeoutError{URL: url, Timeout: timeout}
	}

	msg := strings.TrimSpace(string(out))
	if isAuthFailure(msg) {
		return &AuthError{URL: url, Message: msg}
	}
	return &cloneError{url: url, output: msg}
}

type cloneError struct {
	url    string
	output string
}

func (e *cloneError) Error() string {
	return "git clone of '" + e.url + "' failed: " + e.output
}
