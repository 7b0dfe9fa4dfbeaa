package service

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/compose"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/docker"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
)

// fakeRunner simulates the docker CLI. With daemonDown, `docker info`
// fails; otherwise compose commands succeed and `ps` reports every service
// as running.
type fakeRunner struct {
	daemonDown bool
	noBinary   bool
	upFails    bool
	commands   []string
	running    []string
}

func (f *fakeRunner) Run(dir, name string, args ...string) runner.Result {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)

	switch {
	case strings.HasPrefix(cmd, "docker info"):
		if f.daemonDown {
			return runner.Result{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"}
		}
	case strings.Contains(cmd, " up -d"):
		if f.upFails {
			return runner.Result{ExitCode: 1, Stderr: "port already allocated"}
		}
	case strings.Contains(cmd, "ps --status running --services"):
		return runner.Result{ExitCode: 0, Stdout: strings.Join(f.running, "\n") + "\n"}
	}
	return runner.Result{ExitCode: 0}
}

func (f *fakeRunner) RunInteractive(dir, name string, args ...string) runner.Result {
	return f.Run(dir, name, args...)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.noBinary {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func testEnv(t *testing.T, r *fakeRunner, interactive bool, script *prompt.Script) *Env {
	t.Helper()
	h := docker.NewHelper(r)
	h.ReadyInterval = time.Millisecond
	env := &Env{
		Docker:      h,
		Interactive: interactive,
		Quiet:       true,
		Flags:       map[string]string{},
		ProbeTCP: func(host string, port int) error {
			t.Fatal("no network probe expected")
			return nil
		},
		ProbeHTTP: func(url string) error {
			t.Fatal("no network probe expected")
			return nil
		},
	}
	if script != nil {
		env.Prompter = script
	}
	return env
}

func TestDatabaseNonInteractiveLocalDefaults(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	env := testEnv(t, r, false, nil)

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsDatabase: true, Databases: []string{"mysql", "pgsql"}})
	require.NoError(t, err)

	assert.False(t, res.UsingDocker)
	assert.Equal(t, "mysql", res.Values.GetString("db_connection"))
	assert.Equal(t, "127.0.0.1", res.Values.GetString("db_host"))
	assert.Equal(t, "shop", res.Values.GetString("db_name"))
	assert.Equal(t, "root", res.Values.GetString("db_user"))
}

func TestDatabaseEngineFlagWins(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	script := &prompt.Script{Answers: []any{true}} // "already running?" -> yes
	env := testEnv(t, r, true, script)
	env.Flags["database"] = "pgsql"
	env.ProbeTCP = func(host string, port int) error { return nil } // reachable

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsDatabase: true, Databases: []string{"mysql", "pgsql"}})
	require.NoError(t, err)

	assert.Equal(t, "pgsql", res.Values.GetString("db_connection"))
	assert.Equal(t, "5432", res.Values.GetString("db_port"))
	assert.Equal(t, "postgres", res.Values.GetString("db_user"))
}

func TestDatabaseUnknownEngineFlag(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["database"] = "oracle"

	s := &DatabaseStrategy{Env: env}
	_, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	assert.ErrorContains(t, err, "oracle")
}

func TestDatabaseEngineMustBeOffered(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["database"] = "pgsql" // known engine, but not offered here

	s := &DatabaseStrategy{Env: env}
	_, err := s.Setup(App{Name: "store", Dir: t.TempDir()},
		Options{NeedsDatabase: true, Databases: []string{"mysql", "mariadb"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "pgsql")
	assert.ErrorContains(t, err, "mysql, mariadb")
}

func TestDatabaseDockerSetup(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{running: []string{"shop-mysql"}}
	env := testEnv(t, r, false, nil)

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: dir}, Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	require.NoError(t, err)

	assert.True(t, res.UsingDocker)
	assert.True(t, res.Values.GetBool("db_docker"))
	assert.Equal(t, "password", res.Values.GetString("db_password"))

	names, err := compose.ServiceNames(filepath.Join(dir, compose.DefaultFile))
	require.NoError(t, err)
	assert.Contains(t, names, "shop-mysql")
}

func TestDatabaseDockerFailureFallsBackToLocal(t *testing.T) {
	r := &fakeRunner{upFails: true}
	env := testEnv(t, r, false, nil)

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	require.NoError(t, err)

	assert.False(t, res.UsingDocker)
	assert.Equal(t, "", res.Values.GetString("db_password"))
}

func TestDatabaseManualEntryWhenNotRunning(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	script := &prompt.Script{Answers: []any{
		false,         // not already running -> straight to manual details
		"db.internal", // host
		"3307",        // port
		"shop_db",     // name
		"admin",       // user
		"hunter2",     // password
	}}
	env := testEnv(t, r, true, script)

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", res.Values.GetString("db_host"))
	assert.Equal(t, "3307", res.Values.GetString("db_port"))
	assert.Equal(t, "shop_db", res.Values.GetString("db_name"))
	assert.Equal(t, "admin", res.Values.GetString("db_user"))
	assert.Equal(t, "hunter2", res.Values.GetString("db_password"))
}

func TestDatabaseUnreachableFatalPolicy(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	script := &prompt.Script{Answers: []any{true}} // claims running
	env := testEnv(t, r, true, script)
	env.ProbeTCP = func(host string, port int) error { return errors.New("connection refused") }

	s := &DatabaseStrategy{Env: env}
	_, err := s.Setup(App{Name: "shop", Dir: t.TempDir()},
		Options{NeedsDatabase: true, Databases: []string{"mysql"}, Fallback: FallbackFatal})

	var setupErr *SetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, "MySQL", setupErr.Service)
	assert.NotEmpty(t, setupErr.Hint)
}

func TestDatabaseUnreachableManualPolicy(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	script := &prompt.Script{Answers: []any{
		true,        // claims running, probe will fail
		"127.0.0.1", // manual host
		"3306",
		"shop",
		"root",
		"",
	}}
	env := testEnv(t, r, true, script)
	env.ProbeTCP = func(host string, port int) error { return errors.New("connection refused") }

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()},
		Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	require.NoError(t, err)
	assert.Equal(t, "shop", res.Values.GetString("db_name"))
}

func TestDatabaseDockerRetryAfterFailedProbe(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{running: []string{"shop-mysql"}}
	script := &prompt.Script{Answers: []any{
		false, // decline docker on first offer
		true,  // claims service is running
		true,  // accept docker retry after failed probe
	}}
	env := testEnv(t, r, true, script)
	env.ProbeTCP = func(host string, port int) error { return errors.New("connection refused") }

	s := &DatabaseStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: dir}, Options{NeedsDatabase: true, Databases: []string{"mysql"}})
	require.NoError(t, err)
	assert.True(t, res.UsingDocker)
}

func TestCacheDockerSetup(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{running: []string{"shop-redis"}}
	env := testEnv(t, r, false, nil)

	s := &CacheStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: dir}, Options{NeedsCache: true})
	require.NoError(t, err)

	assert.True(t, res.Values.GetBool("use_redis"))
	assert.Equal(t, "6379", res.Values.GetString("redis_port"))

	names, err := compose.ServiceNames(filepath.Join(dir, compose.DefaultFile))
	require.NoError(t, err)
	assert.Contains(t, names, "shop-redis")
}

func TestQueueNonInteractiveDefaults(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)

	s := &QueueStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsQueue: true})
	require.NoError(t, err)

	assert.Equal(t, "rabbitmq", res.Values.GetString("queue_connection"))
	assert.Equal(t, "guest", res.Values.GetString("queue_user"))
	assert.Equal(t, "5672", res.Values.GetString("queue_port"))
}

func TestSearchNoneShortCircuits(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["search"] = "none"

	s := &SearchStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsSearch: true})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Values.Len())
}

func TestSearchMeilisearchDocker(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{running: []string{"shop-meilisearch"}}
	env := testEnv(t, r, false, nil)
	env.Flags["search"] = "meilisearch"

	s := &SearchStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: dir}, Options{NeedsSearch: true})
	require.NoError(t, err)

	assert.Equal(t, "meilisearch", res.Values.GetString("search_engine"))
	assert.Equal(t, "7700", res.Values.GetString("search_port"))
	assert.Equal(t, "masterKey", res.Values.GetString("search_key"))
	assert.True(t, res.UsingDocker)
}

func TestSearchDefaultsToFirstEngine(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)

	s := &SearchStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()},
		Options{NeedsSearch: true, SearchEngines: []string{"opensearch", "elasticsearch"}})
	require.NoError(t, err)
	assert.Equal(t, "opensearch", res.Values.GetString("search_engine"))
	assert.Equal(t, "9200", res.Values.GetString("search_port"))
}

func TestSearchEngineMustBeOffered(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["search"] = "typesense" // known engine, but not offered here

	s := &SearchStrategy{Env: env}
	_, err := s.Setup(App{Name: "store", Dir: t.TempDir()},
		Options{NeedsSearch: true, SearchEngines: []string{"opensearch", "elasticsearch"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "typesense")

	// "none" is an engine like any other: app types that require search
	// do not offer it.
	env.Flags["search"] = "none"
	_, err = s.Setup(App{Name: "store", Dir: t.TempDir()},
		Options{NeedsSearch: true, SearchEngines: []string{"opensearch", "elasticsearch"}})
	assert.ErrorContains(t, err, "none")
}

func TestStorageDockerGeneratesCredentials(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{running: []string{"shop-minio"}}
	env := testEnv(t, r, false, nil)

	s := &StorageStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: dir}, Options{NeedsStorage: true})
	require.NoError(t, err)

	access := res.Values.GetString("minio_access_key")
	secretKey := res.Values.GetString("minio_secret_key")
	assert.Regexp(t, `^[A-Z0-9]{16}$`, access)
	assert.Regexp(t, `^[a-z0-9]{32}$`, secretKey)
	assert.Equal(t, "shop", res.Values.GetString("minio_bucket"))

	// The one-shot bucket provisioning ran inside the container.
	found := false
	for _, cmd := range r.commands {
		if strings.Contains(cmd, "exec -T shop-minio") && strings.Contains(cmd, "mc mb local/shop") {
			found = true
		}
	}
	assert.True(t, found, "expected bucket provisioning exec, got: %v", r.commands)
}

func TestStorageBucketNameValidatedOnManualEntry(t *testing.T) {
	r := &fakeRunner{daemonDown: true}
	script := &prompt.Script{Answers: []any{
		false, // not running -> manual
		"storage.internal",
		"9000",
		"AKIA1234",
		"supersecret",
		"My Uploads!", // needs normalization
	}}
	env := testEnv(t, r, true, script)

	s := &StorageStrategy{Env: env}
	res, err := s.Setup(App{Name: "shop", Dir: t.TempDir()}, Options{NeedsStorage: true})
	require.NoError(t, err)
	assert.Equal(t, "my-uploads", res.Values.GetString("minio_bucket"))
}

func TestPromptPortRejectsGarbage(t *testing.T) {
	script := &prompt.Script{Answers: []any{"not-a-port"}}
	_, err := promptPort(script, "Database port", 3306)
	assert.ErrorContains(t, err, "invalid port")
}
