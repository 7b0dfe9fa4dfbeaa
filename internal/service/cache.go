package service

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

const redisFragment = `  {{APP_NAME}}-redis:
    image: redis:7-alpine
    container_name: {{APP_NAME}}-redis
    restart: unless-stopped
    ports:
      - "6379:6379"
    volumes:
      - ./.phphive/redis:/data
`

const redisPort = 6379

// CacheStrategy sets up Redis for caching and sessions.
type CacheStrategy struct {
	Env *Env
}

func (s *CacheStrategy) Name() string { return "Cache (Redis)" }

func (s *CacheStrategy) Setup(app App, opts Options) (*Result, error) {
	if s.Env.Docker.IsAvailable() {
		useDocker, err := s.Env.offerDocker("cache-docker", "Redis")
		if err != nil {
			return nil, err
		}
		if useDocker {
			err := s.dockerSetup(app)
			if err == nil {
				return &Result{UsingDocker: true, Values: s.values("127.0.0.1", redisPort, "", true)}, nil
			}
			ui.Warn(fmt.Sprintf("Docker setup for Redis failed, falling back to local setup: %v", err))
		}
	} else if s.Env.Interactive {
		ui.Warn("Docker is not available; " + s.Env.Docker.InstallGuidance())
	}

	return s.Env.runLocalPlan(opts, localPlan{
		display:  "Redis",
		guidance: "install redis-server locally or start Docker and re-run",
		defaults: func() *appconfig.ConfigMap { return s.values("127.0.0.1", redisPort, "", false) },
		probe:    func() error { return s.Env.probeTCP("127.0.0.1", redisPort) },
		manual:   s.manualEntry,
		dockerRetry: s.retry(app, func() *appconfig.ConfigMap {
			return s.values("127.0.0.1", redisPort, "", true)
		}),
	})
}

func (s *CacheStrategy) retry(app App, values func() *appconfig.ConfigMap) func() (*Result, error) {
	if !s.Env.Docker.IsAvailable() {
		return nil
	}
	return func() (*Result, error) {
		if err := s.dockerSetup(app); err != nil {
			return nil, &SetupError{Service: "Redis", Hint: "check docker logs for the redis container", Err: err}
		}
		return &Result{UsingDocker: true, Values: values()}, nil
	}
}

func (s *CacheStrategy) dockerSetup(app App) error {
	return s.Env.runDockerPlan(app, dockerPlan{
		serviceName:  app.Name + "-redis",
		templateName: "redis",
		inline:       redisFragment,
		vars:         map[string]string{"APP_NAME": app.Name},
	})
}

func (s *CacheStrategy) manualEntry() (*appconfig.ConfigMap, error) {
	p := s.Env.Prompter
	host, err := p.Input("Redis host", "", "127.0.0.1", "127.0.0.1")
	if err != nil {
		return nil, err
	}
	port, err := promptPort(p, "Redis port", redisPort)
	if err != nil {
		return nil, err
	}
	password, err := p.Password("Redis password", "leave empty for none")
	if err != nil {
		return nil, err
	}
	return s.values(host, port, password, false), nil
}

func (s *CacheStrategy) values(host string, port int, password string, usingDocker bool) *appconfig.ConfigMap {
	m := appconfig.NewConfigMap()
	m.Set("use_redis", true)
	m.Set("redis_host", host)
	m.Set("redis_port", port)
	m.Set("redis_password", password)
	m.Set("redis_docker", usingDocker)
	return m
}
