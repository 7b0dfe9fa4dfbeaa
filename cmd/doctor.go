package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/docker"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the tools phphive shells out to are available",
	Long: `Verify PHP, Composer, Git, and Docker. Docker failures are warnings,
not errors: every subsystem has a local fallback.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	r := &runner.ExecRunner{}
	passed := 0
	failed := 0

	binaries := []struct {
		name       string
		display    string
		suggestion string
	}{
		{"php", "PHP", "install PHP 8.x: https://www.php.net/downloads"},
		{"composer", "Composer", "install Composer: https://getcomposer.org/download/"},
		{"git", "Git", "install Git: https://git-scm.com/downloads"},
	}

	for _, b := range binaries {
		path, err := findExecutable(b.name)
		if err != nil {
			ui.ValidationErr(b.display, "not found on PATH", b.suggestion)
			failed++
			continue
		}
		ui.ValidationOK(b.display, versionOf(r, path))
		passed++
	}

	helper := docker.NewHelper(r)
	switch {
	case !helper.IsInstalled():
		ui.ValidationErr("Docker", "not found on PATH", helper.InstallGuidance())
		failed++
	case !helper.IsAvailable():
		ui.ValidationOK("Docker", "installed, but the daemon is not running")
		passed++
	default:
		ui.ValidationOK("Docker", "daemon reachable")
		passed++
	}

	fmt.Println()
	if failed == 0 {
		ui.Success(fmt.Sprintf("%d checks passed, 0 errors", passed))
		return nil
	}
	fmt.Printf("%d checks passed, %d errors\n", passed, failed)
	return fmt.Errorf("%d missing tools", failed)
}

// versionOf asks the binary for its version and returns the first output
// line, or a plain "found" when the binary refuses to answer.
func versionOf(r runner.Runner, path string) string {
	res := r.Run("", path, "--version")
	if !res.Ok() {
		return "found"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	if len(line) > 60 {
		line = line[:60]
	}
	return line
}
