// Package runner abstracts external process execution so the Docker and
// Composer interactions can be faked in tests.
package runner

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result captures the outcome of one external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Runner executes external commands.
type Runner interface {
	// Run executes a command in dir, capturing output.
	Run(dir, name string, args ...string) Result
	// RunInteractive executes a command in dir with the parent's
	// stdin/stdout/stderr attached. Used for installers that show
	// their own progress output.
	RunInteractive(dir, name string, args ...string) Result
	// LookPath reports whether a binary is resolvable on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Timeout bounds captured (non-interactive) commands. Zero means
	// no deadline.
	Timeout time.Duration
}

func (e *ExecRunner) Run(dir, name string, args ...string) Result {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Start()
	if err != nil {
		return Result{ExitCode: 127, Stderr: err.Error()}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if e.Timeout > 0 {
		select {
		case err = <-done:
		case <-time.After(e.Timeout):
			_ = cmd.Process.Kill()
			<-done
			return Result{ExitCode: 124, Stdout: stdout.String(), Stderr: "timed out"}
		}
	} else {
		err = <-done
	}

	return Result{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}

func (e *ExecRunner) RunInteractive(dir, name string, args ...string) Result {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	return Result{ExitCode: exitCode(err)}
}

func (e *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return 127
}

// Split breaks a shell-style command line into name and args. Quoting is
// honored for double and single quotes; no other shell features are
// interpreted.
func Split(commandLine string) (string, []string) {
	fields := splitQuoted(commandLine)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func splitQuoted(s string) []string {
	var fields []string
	var cur strings.Builder
	var quote byte
	inField := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inField = true
		case c == ' ' || c == '\t':
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteByte(c)
			inField = true
		}
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields
}
