package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
)

func TestOrchestratorDatabaseOnly(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsDatabase: true,
		Databases:     []string{"mysql"},
	})
	require.NoError(t, err)

	require.NotZero(t, cfg.Len())
	for _, key := range cfg.Keys() {
		assert.True(t, strings.HasPrefix(key, "db_"), "unexpected key %q", key)
	}
}

func TestOrchestratorConfirmDefaults(t *testing.T) {
	// Non-interactive: cache defaults to offered, queue and storage to
	// skipped.
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsDatabase: true,
		Databases:     []string{"mysql"},
		NeedsCache:    true,
		NeedsQueue:    true,
		NeedsStorage:  true,
	})
	require.NoError(t, err)

	assert.True(t, cfg.GetBool("use_redis"))
	assert.False(t, cfg.Has("queue_host"))
	assert.False(t, cfg.Has("minio_host"))
}

func TestOrchestratorQueueFlagOverridesDefault(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["queue"] = "true"
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsQueue: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "rabbitmq", cfg.GetString("queue_connection"))
}

func TestOrchestratorInteractiveDeclinesCache(t *testing.T) {
	script := &prompt.Script{Answers: []any{false}} // decline the cache confirm
	env := testEnv(t, &fakeRunner{daemonDown: true}, true, script)
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsCache: true,
	})
	require.NoError(t, err)
	assert.False(t, cfg.Has("use_redis"))
}

func TestOrchestratorSearchNone(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	env.Flags["search"] = "none"
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsSearch: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Len())
}

// Non-interactive end-to-end shape: a plain `phphive new shop
// --no-interaction` style run yields deterministic database defaults with
// no network probes.
func TestOrchestratorNonInteractiveEndToEnd(t *testing.T) {
	env := testEnv(t, &fakeRunner{daemonDown: true}, false, nil)
	o := NewOrchestrator(env)

	cfg, err := o.SetupInfrastructure(App{Name: "shop", Dir: t.TempDir()}, Options{
		NeedsDatabase: true,
		Databases:     []string{"mysql", "mariadb", "pgsql"},
		NeedsCache:    false,
		NeedsQueue:    false,
		NeedsSearch:   false,
		NeedsStorage:  false,
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.GetString("db_host"))
	assert.Equal(t, "shop", cfg.GetString("db_name"))
	assert.Equal(t, "root", cfg.GetString("db_user"))
	assert.Equal(t, "mysql", cfg.GetString("db_connection"))
}
