// Package service implements per-subsystem infrastructure setup: database,
// cache, queue, search engine, and object storage. Every strategy follows
// the same shape: offer Docker when the daemon is reachable, degrade to a
// local setup otherwise, and return a flat subsystem-prefixed config map.
package service

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/docker"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
)

// FallbackPolicy decides what happens when a local service fails its
// reachability check and the user declines the Docker retry.
type FallbackPolicy string

const (
	// FallbackManualEntry prompts for connection details as a last resort.
	FallbackManualEntry FallbackPolicy = "manual"
	// FallbackFatal aborts the scaffolding run with guidance.
	FallbackFatal FallbackPolicy = "fatal"
)

// Options declares which subsystems an app type wants offered.
type Options struct {
	NeedsDatabase bool
	Databases     []string // supported engine identifiers, first entry is the default
	NeedsCache    bool
	NeedsQueue    bool
	NeedsSearch   bool
	SearchEngines []string // offered engines, first entry is the default; "none" short-circuits
	NeedsStorage  bool

	Fallback FallbackPolicy
}

func (o Options) fallback() FallbackPolicy {
	if o.Fallback == "" {
		return FallbackManualEntry
	}
	return o.Fallback
}

// App identifies the application being scaffolded. Name is already
// normalized; Dir is the application root where the compose file lives.
type App struct {
	Name string
	Dir  string
}

// Env carries the collaborators every strategy needs. Constructed once at
// the top level and passed down; strategies hold no global state.
type Env struct {
	Prompter    prompt.Prompter
	Docker      *docker.Helper
	Interactive bool
	Quiet       bool

	// Flags maps flag names (e.g. "database", "database-docker") to raw
	// CLI values. Empty string means the flag was not given.
	Flags map[string]string

	// TemplateDir optionally overrides the built-in compose fragments.
	TemplateDir string

	// Probes are swappable for tests.
	ProbeTCP  func(host string, port int) error
	ProbeHTTP func(url string) error
}

func (e *Env) flag(name string) string {
	if e.Flags == nil {
		return ""
	}
	return e.Flags[name]
}

func (e *Env) probeTCP(host string, port int) error {
	if e.ProbeTCP != nil {
		return e.ProbeTCP(host, port)
	}
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 3*time.Second)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (e *Env) probeHTTP(url string) error {
	if e.ProbeHTTP != nil {
		return e.ProbeHTTP(url)
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Result is the normalized output of one subsystem setup.
type Result struct {
	UsingDocker bool
	Values      *appconfig.ConfigMap
}

// Strategy is one subsystem's setup entry point.
type Strategy interface {
	Name() string
	Setup(app App, opts Options) (*Result, error)
}

// SetupError is a fatal subsystem failure carrying a remediation hint for
// the CLI to print before exiting non-zero.
type SetupError struct {
	Service string
	Hint    string
	Err     error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s setup failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s setup failed", e.Service)
}

func (e *SetupError) Unwrap() error { return e.Err }
