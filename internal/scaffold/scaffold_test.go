package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/apptype"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/compose"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/docker"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

type call struct {
	dir  string
	line string
	mode string // captured or interactive
}

// fakeRunner records every command and fails any line containing failOn.
// Docker is only visible when dockerUp is set; otherwise strategies take
// the non-interactive local path.
type fakeRunner struct {
	calls    []call
	failOn   string
	dockerUp bool
	running  []string
}

func (f *fakeRunner) Run(dir, name string, args ...string) runner.Result {
	return f.record("captured", dir, name, args...)
}

func (f *fakeRunner) RunInteractive(dir, name string, args ...string) runner.Result {
	return f.record("interactive", dir, name, args...)
}

func (f *fakeRunner) record(mode, dir, name string, args ...string) runner.Result {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call{dir: dir, line: line, mode: mode})
	if f.failOn != "" && strings.Contains(line, f.failOn) {
		return runner.Result{ExitCode: 1, Stderr: "boom\ndetails"}
	}
	if strings.Contains(line, "ps --status running --services") {
		return runner.Result{Stdout: strings.Join(f.running, "\n") + "\n"}
	}
	return runner.Result{}
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.dockerUp && name == "docker" {
		return "/usr/bin/docker", nil
	}
	return "", errors.New("not on PATH")
}

func (f *fakeRunner) composerCalls() []call {
	var out []call
	for _, c := range f.calls {
		if strings.HasPrefix(c.line, "composer") || strings.HasPrefix(c.line, "php ") || strings.HasPrefix(c.line, "bin/") {
			out = append(out, c)
		}
	}
	return out
}

func newPipeline(t *testing.T, fr *fakeRunner) *Pipeline {
	t.Helper()
	return &Pipeline{
		Runner: fr,
		Env: &service.Env{
			Docker:      docker.NewHelper(fr),
			Interactive: false,
			Quiet:       true,
		},
		BaseDir: t.TempDir(),
		Quiet:   true,
	}
}

func findType(t *testing.T, name string) apptype.AppType {
	t.Helper()
	at, ok := apptype.Find(name)
	require.True(t, ok)
	return at
}

func TestPipelineSkeleton(t *testing.T) {
	fr := &fakeRunner{}
	p := newPipeline(t, fr)

	res, err := p.Run(findType(t, "skeleton"), "My Helpers", &apptype.Session{})
	require.NoError(t, err)

	appDir := filepath.Join(p.BaseDir, "apps", "my-helpers")
	assert.Equal(t, appDir, res.Dir)

	readme, err := os.ReadFile(filepath.Join(appDir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "# My Helpers")
	assert.Contains(t, string(readme), "A PHP application.", "empty description falls back to the stub default")
	assert.FileExists(t, filepath.Join(appDir, ".gitignore"))

	calls := fr.composerCalls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0].line, "composer init")
	assert.Equal(t, filepath.Join(p.BaseDir, "apps"), calls[0].dir, "install runs in the apps directory")
	assert.Contains(t, calls[1].line, "phpunit/phpunit")
	assert.Equal(t, "composer install", calls[2].line)
	assert.Equal(t, appDir, calls[2].dir, "post-install runs inside the app")
}

func TestPipelineLaravelWritesEnv(t *testing.T) {
	fr := &fakeRunner{}
	p := newPipeline(t, fr)

	res, err := p.Run(findType(t, "laravel"), "shop", &apptype.Session{})
	require.NoError(t, err)

	// Non-interactive infra defaults: database plus cache land in config,
	// queue and storage stay off.
	assert.Equal(t, "mysql", res.Config.GetString("db_connection"))
	assert.True(t, res.Config.GetBool("use_redis"))
	assert.False(t, res.Config.GetBool("use_queue"))
	assert.False(t, res.Config.GetBool("use_minio"))

	env, err := os.ReadFile(filepath.Join(res.Dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "DB_CONNECTION=mysql")
	assert.Contains(t, string(env), "DB_HOST=127.0.0.1")
	assert.Contains(t, string(env), "CACHE_STORE=redis")

	calls := fr.composerCalls()
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Contains(t, last.line, "migrate")
	assert.Equal(t, res.Dir, last.dir)
}

func TestPipelineComposeFileLandsInAppDir(t *testing.T) {
	fr := &fakeRunner{dockerUp: true, running: []string{"shop-mysql", "shop-redis"}}
	p := newPipeline(t, fr)

	res, err := p.Run(findType(t, "laravel"), "shop", &apptype.Session{})
	require.NoError(t, err)

	assert.True(t, res.Config.GetBool("db_docker"))
	assert.FileExists(t, filepath.Join(res.Dir, "docker-compose.yml"),
		"each application carries its own compose file")
	assert.NoFileExists(t, filepath.Join(p.BaseDir, "docker-compose.yml"))

	names, err := compose.ServiceNames(filepath.Join(res.Dir, "docker-compose.yml"))
	require.NoError(t, err)
	assert.Contains(t, names, "shop-mysql")
}

func TestInstallStreamsInstallerOutput(t *testing.T) {
	fr := &fakeRunner{}
	p := &Pipeline{Runner: fr, Quiet: false}

	require.NoError(t, p.install("some-dir", "composer create-project foo/bar baz", "Installing..."))
	require.Len(t, fr.calls, 1)
	assert.Equal(t, "interactive", fr.calls[0].mode)
	assert.Equal(t, "some-dir", fr.calls[0].dir)

	fr.failOn = "create-project"
	err := p.install("some-dir", "composer create-project foo/bar baz", "Installing...")
	assert.ErrorContains(t, err, "exited 1")
}

func TestPipelineInstallFailureAborts(t *testing.T) {
	fr := &fakeRunner{failOn: "create-project"}
	p := newPipeline(t, fr)

	_, err := p.Run(findType(t, "laravel"), "shop", &apptype.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited 1")
	assert.Contains(t, err.Error(), "boom")
	assert.NotContains(t, err.Error(), "details", "only the first stderr line is surfaced")

	appDir := filepath.Join(p.BaseDir, "apps", "shop")
	assert.NoFileExists(t, filepath.Join(appDir, "README.md"))
	assert.NoFileExists(t, filepath.Join(appDir, ".env"))

	for _, c := range fr.composerCalls() {
		assert.NotContains(t, c.line, "artisan", "no post-install after a failed install")
	}
}

func TestPipelineMissingCredentialsFailFast(t *testing.T) {
	fr := &fakeRunner{}
	p := newPipeline(t, fr)

	_, err := p.Run(findType(t, "magento"), "store", &apptype.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marketplace keys")

	assert.Empty(t, fr.calls, "nothing runs when the install command cannot be built")
	assert.NoDirExists(t, filepath.Join(p.BaseDir, "apps"))
}

func TestPipelineRefusesExistingAppDir(t *testing.T) {
	fr := &fakeRunner{}
	p := newPipeline(t, fr)

	appDir := filepath.Join(p.BaseDir, "apps", "shop")
	require.NoError(t, os.MkdirAll(appDir, 0755))

	_, err := p.Run(findType(t, "skeleton"), "shop", &apptype.Session{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, fr.calls)
}

func TestRenderStubsSkipsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("installer readme"), 0644))

	err := RenderStubs(dir, map[string]string{
		"APP_NAME":        "Shop",
		"APP_DESCRIPTION": "An online shop",
		"APP_NAMESPACE":   "Shop",
		"APP_PACKAGE":     "phphive/shop",
		"PHP_VERSION":     "8.3",
		"FRAMEWORK":       "laravel",
	})
	require.NoError(t, err)

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "installer readme", string(readme), "installer-created files are not overwritten")

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), "/vendor/")
}
