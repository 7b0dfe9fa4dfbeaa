// Package docker drives the container runtime CLI for service provisioning.
// Docker is an external collaborator: everything here shells out to the
// docker binary and inspects exit codes.
package docker

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
)

// DefaultReadyAttempts bounds the readiness poll; combined with
// DefaultReadyInterval a service gets one minute to come up.
const (
	DefaultReadyAttempts = 30
	DefaultReadyInterval = 2 * time.Second
)

// Helper wraps the docker CLI. The zero interval/attempt fields fall back
// to the package defaults.
type Helper struct {
	Runner         runner.Runner
	ReadyInterval  time.Duration
	InstallHintURL string
}

func NewHelper(r runner.Runner) *Helper {
	return &Helper{
		Runner:         r,
		ReadyInterval:  DefaultReadyInterval,
		InstallHintURL: "https://docs.docker.com/get-docker/",
	}
}

// IsInstalled reports whether the docker client binary is on PATH,
// independent of daemon health.
func (h *Helper) IsInstalled() bool {
	_, err := h.Runner.LookPath("docker")
	return err == nil
}

// IsAvailable reports whether the docker daemon answers a lightweight
// command.
func (h *Helper) IsAvailable() bool {
	if !h.IsInstalled() {
		return false
	}
	return h.Runner.Run("", "docker", "info", "--format", "{{.ServerVersion}}").Ok()
}

// InstallGuidance is the remediation hint shown when docker is missing.
func (h *Helper) InstallGuidance() string {
	return "install Docker Desktop or the docker engine: " + h.InstallHintURL
}

// Up starts the compose file's services detached.
func (h *Helper) Up(dir, composeFile string) error {
	res := h.Runner.Run(dir, "docker", "compose", "-f", composeFile, "up", "-d")
	if !res.Ok() {
		return fmt.Errorf("docker compose up failed (exit %d): %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// WaitReady polls until the named service reports running, up to
// maxAttempts. A timeout returns false rather than an error: the caller
// decides whether that is fatal.
func (h *Helper) WaitReady(dir, composeFile, service string, maxAttempts int) bool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultReadyAttempts
	}
	interval := h.ReadyInterval
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res := h.Runner.Run(dir, "docker", "compose", "-f", composeFile,
			"ps", "--status", "running", "--services")
		if res.Ok() {
			for _, line := range strings.Split(res.Stdout, "\n") {
				if strings.TrimSpace(line) == service {
					return true
				}
			}
		}
		time.Sleep(interval)
	}
	return false
}

// ExecOneShot runs a provisioning command inside a running service
// container. "Already exists" responses count as success so re-runs stay
// idempotent.
func (h *Helper) ExecOneShot(dir, composeFile, service, command string) error {
	res := h.Runner.Run(dir, "docker", "compose", "-f", composeFile,
		"exec", "-T", service, "sh", "-c", command)
	if res.Ok() {
		return nil
	}
	combined := strings.ToLower(res.Stdout + res.Stderr)
	if strings.Contains(combined, "already exists") || strings.Contains(combined, "already own") {
		return nil
	}
	return fmt.Errorf("exec in %s failed (exit %d): %s", service, res.ExitCode, strings.TrimSpace(res.Stderr))
}
