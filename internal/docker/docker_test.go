package docker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
)

// fakeRunner replays canned results keyed by the joined command line.
type fakeRunner struct {
	results  map[string]runner.Result
	missing  bool
	commands []string
}

func (f *fakeRunner) Run(dir, name string, args ...string) runner.Result {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)
	if res, ok := f.results[cmd]; ok {
		return res
	}
	return runner.Result{ExitCode: 0}
}

func (f *fakeRunner) RunInteractive(dir, name string, args ...string) runner.Result {
	return f.Run(dir, name, args...)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func TestIsInstalled(t *testing.T) {
	assert.True(t, NewHelper(&fakeRunner{}).IsInstalled())
	assert.False(t, NewHelper(&fakeRunner{missing: true}).IsInstalled())
}

func TestIsAvailable(t *testing.T) {
	up := &fakeRunner{}
	assert.True(t, NewHelper(up).IsAvailable())

	down := &fakeRunner{results: map[string]runner.Result{
		"docker info --format {{.ServerVersion}}": {ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"},
	}}
	assert.False(t, NewHelper(down).IsAvailable())

	// Client missing entirely: no daemon probe should even run.
	missing := &fakeRunner{missing: true}
	assert.False(t, NewHelper(missing).IsAvailable())
	assert.Empty(t, missing.commands)
}

func TestUp(t *testing.T) {
	ok := &fakeRunner{}
	h := NewHelper(ok)
	assert.NoError(t, h.Up("/tmp/shop", "docker-compose.yml"))

	bad := &fakeRunner{results: map[string]runner.Result{
		"docker compose -f docker-compose.yml up -d": {ExitCode: 1, Stderr: "port already allocated"},
	}}
	err := NewHelper(bad).Up("/tmp/shop", "docker-compose.yml")
	assert.ErrorContains(t, err, "port already allocated")
}

func TestWaitReady(t *testing.T) {
	r := &fakeRunner{results: map[string]runner.Result{
		"docker compose -f docker-compose.yml ps --status running --services": {
			ExitCode: 0,
			Stdout:   "shop-mysql\nshop-redis\n",
		},
	}}
	h := NewHelper(r)
	h.ReadyInterval = 1 // effectively no sleep in tests

	assert.True(t, h.WaitReady("/tmp/shop", "docker-compose.yml", "shop-mysql", 3))
	assert.False(t, h.WaitReady("/tmp/shop", "docker-compose.yml", "shop-minio", 3))
}

func TestWaitReadyTimesOutWithoutError(t *testing.T) {
	r := &fakeRunner{results: map[string]runner.Result{
		"docker compose -f docker-compose.yml ps --status running --services": {ExitCode: 1},
	}}
	h := NewHelper(r)
	h.ReadyInterval = 1

	assert.False(t, h.WaitReady("/tmp/shop", "docker-compose.yml", "shop-mysql", 2))
	assert.Len(t, r.commands, 2, "polling must stop after maxAttempts")
}

func TestExecOneShot(t *testing.T) {
	cmd := "docker compose -f docker-compose.yml exec -T shop-minio sh -c mc mb local/shop"

	ok := &fakeRunner{}
	assert.NoError(t, NewHelper(ok).ExecOneShot("/tmp/shop", "docker-compose.yml", "shop-minio", "mc mb local/shop"))

	exists := &fakeRunner{results: map[string]runner.Result{
		cmd: {ExitCode: 1, Stderr: "Bucket local/shop already exists"},
	}}
	assert.NoError(t, NewHelper(exists).ExecOneShot("/tmp/shop", "docker-compose.yml", "shop-minio", "mc mb local/shop"))

	broken := &fakeRunner{results: map[string]runner.Result{
		cmd: {ExitCode: 1, Stderr: "connection refused"},
	}}
	assert.ErrorContains(t, NewHelper(broken).ExecOneShot("/tmp/shop", "docker-compose.yml", "shop-minio", "mc mb local/shop"),
		"connection refused")
}
