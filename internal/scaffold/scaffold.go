// Package scaffold sequences one application's creation: configuration
// collection, framework installation, infrastructure setup, stub rendering,
// and the declarative config writes.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/apptype"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

// AppsDir is the monorepo subdirectory applications are installed into.
const AppsDir = "apps"

// Pipeline wires the collaborators for one scaffolding run. BaseDir is the
// monorepo root holding the apps directory; each application gets its own
// compose file.
type Pipeline struct {
	Runner  runner.Runner
	Env     *service.Env
	BaseDir string
	Quiet   bool

	// Fallback overrides the app type's policy for unreachable local
	// services when set.
	Fallback service.FallbackPolicy
}

// Result reports where the application landed and the full accumulated
// configuration, framework answers and infrastructure values merged.
type Result struct {
	Dir    string
	Config *appconfig.ConfigMap
}

// Run executes the pipeline for one application. A failing external command
// aborts the remaining steps; nothing is written after a failure so the
// monorepo is never left with half-applied configuration.
func (p *Pipeline) Run(at apptype.AppType, appName string, s *apptype.Session) (*Result, error) {
	cfg, err := at.CollectConfiguration(appName, s)
	if err != nil {
		return nil, err
	}

	// Build the install command before touching the filesystem so missing
	// credentials fail before any side effects.
	installCmd, err := at.InstallCommand(cfg)
	if err != nil {
		return nil, err
	}

	slug := cfg.GetString("app_slug")
	appsDir := filepath.Join(p.BaseDir, AppsDir)
	appDir := filepath.Join(appsDir, slug)

	if _, err := os.Stat(appDir); err == nil {
		return nil, fmt.Errorf("%s already exists, remove it or pick another name", appDir)
	}
	// The installer targets the slug directory; creating it up front keeps
	// stub rendering working even with installers that only write files.
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return nil, err
	}

	for _, cmd := range at.PreInstallCommands(cfg) {
		if err := p.exec(p.BaseDir, cmd, "Preparing package sources..."); err != nil {
			return nil, err
		}
	}

	display := at.Metadata().DisplayName
	if err := p.install(appsDir, installCmd, fmt.Sprintf("Installing %s...", display)); err != nil {
		return nil, err
	}

	if err := RenderStubs(appDir, at.StubVariables(cfg)); err != nil {
		return nil, err
	}

	// Infrastructure comes after install so the app directory exists, and
	// before post-install so migrations and provisioning see a reachable
	// database. Each application carries its own compose file.
	opts := at.InfrastructureOptions(cfg)
	if p.Fallback != "" {
		opts.Fallback = p.Fallback
	}
	orch := service.NewOrchestrator(p.Env)
	infra, err := orch.SetupInfrastructure(service.App{Name: slug, Dir: appDir}, opts)
	if err != nil {
		return nil, err
	}
	cfg.Merge(infra)

	writer := &appconfig.Writer{BaseDir: appDir}
	if err := writer.Apply(at.WritableConfig(cfg)); err != nil {
		return nil, err
	}

	for _, cmd := range at.PostInstallCommands(cfg) {
		if err := p.exec(appDir, cmd, fmt.Sprintf("Running %s...", firstWords(cmd, 3))); err != nil {
			return nil, err
		}
	}

	return &Result{Dir: appDir, Config: cfg}, nil
}

// install runs the framework installer. Installers render their own
// progress output, so outside quiet mode they get the terminal instead of
// a spinner over captured output.
func (p *Pipeline) install(dir, commandLine, message string) error {
	if p.Quiet {
		return p.exec(dir, commandLine, message)
	}
	name, args := runner.Split(commandLine)
	if name == "" {
		return nil
	}
	fmt.Println(ui.Bold(message))
	res := p.Runner.RunInteractive(dir, name, args...)
	if !res.Ok() {
		return fmt.Errorf("%s exited %d", name, res.ExitCode)
	}
	return nil
}

// exec runs one shell-style command line under a spinner and turns a
// non-zero exit into an error carrying the captured stderr.
func (p *Pipeline) exec(dir, commandLine, message string) error {
	name, args := runner.Split(commandLine)
	if name == "" {
		return nil
	}
	return ui.WithSpinner(p.Quiet, message, func() error {
		res := p.Runner.Run(dir, name, args...)
		if !res.Ok() {
			return fmt.Errorf("%s exited %d: %s", name, res.ExitCode, firstLine(res.Stderr))
		}
		return nil
	})
}

func firstWords(s string, n int) string {
	name, args := runner.Split(s)
	words := append([]string{name}, args...)
	if len(words) > n {
		words = words[:n]
	}
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
