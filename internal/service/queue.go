package service

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

const rabbitmqFragment = `  {{APP_NAME}}-rabbitmq:
    image: rabbitmq:3-management-alpine
    container_name: {{APP_NAME}}-rabbitmq
    restart: unless-stopped
    ports:
      - "5672:5672"
      - "15672:15672"
    volumes:
      - ./.phphive/rabbitmq:/var/lib/rabbitmq
`

const (
	rabbitmqPort     = 5672
	rabbitmqUser     = "guest"
	rabbitmqPassword = "guest"
)

// QueueStrategy sets up RabbitMQ as the message broker.
type QueueStrategy struct {
	Env *Env
}

func (s *QueueStrategy) Name() string { return "Queue (RabbitMQ)" }

func (s *QueueStrategy) Setup(app App, opts Options) (*Result, error) {
	if s.Env.Docker.IsAvailable() {
		useDocker, err := s.Env.offerDocker("queue-docker", "RabbitMQ")
		if err != nil {
			return nil, err
		}
		if useDocker {
			err := s.dockerSetup(app)
			if err == nil {
				return &Result{UsingDocker: true, Values: s.values("127.0.0.1", rabbitmqPort, rabbitmqUser, rabbitmqPassword, true)}, nil
			}
			ui.Warn(fmt.Sprintf("Docker setup for RabbitMQ failed, falling back to local setup: %v", err))
		}
	} else if s.Env.Interactive {
		ui.Warn("Docker is not available; " + s.Env.Docker.InstallGuidance())
	}

	return s.Env.runLocalPlan(opts, localPlan{
		display:  "RabbitMQ",
		guidance: "install rabbitmq-server locally or start Docker and re-run",
		defaults: func() *appconfig.ConfigMap {
			return s.values("127.0.0.1", rabbitmqPort, rabbitmqUser, rabbitmqPassword, false)
		},
		probe:  func() error { return s.Env.probeTCP("127.0.0.1", rabbitmqPort) },
		manual: s.manualEntry,
		dockerRetry: s.retry(app, func() *appconfig.ConfigMap {
			return s.values("127.0.0.1", rabbitmqPort, rabbitmqUser, rabbitmqPassword, true)
		}),
	})
}

func (s *QueueStrategy) retry(app App, values func() *appconfig.ConfigMap) func() (*Result, error) {
	if !s.Env.Docker.IsAvailable() {
		return nil
	}
	return func() (*Result, error) {
		if err := s.dockerSetup(app); err != nil {
			return nil, &SetupError{Service: "RabbitMQ", Hint: "check docker logs for the rabbitmq container", Err: err}
		}
		return &Result{UsingDocker: true, Values: values()}, nil
	}
}

func (s *QueueStrategy) dockerSetup(app App) error {
	return s.Env.runDockerPlan(app, dockerPlan{
		serviceName:  app.Name + "-rabbitmq",
		templateName: "rabbitmq",
		inline:       rabbitmqFragment,
		vars:         map[string]string{"APP_NAME": app.Name},
	})
}

func (s *QueueStrategy) manualEntry() (*appconfig.ConfigMap, error) {
	p := s.Env.Prompter
	host, err := p.Input("RabbitMQ host", "", "127.0.0.1", "127.0.0.1")
	if err != nil {
		return nil, err
	}
	port, err := promptPort(p, "RabbitMQ port", rabbitmqPort)
	if err != nil {
		return nil, err
	}
	user, err := p.Input("RabbitMQ user", "", rabbitmqUser, rabbitmqUser)
	if err != nil {
		return nil, err
	}
	password, err := p.Password("RabbitMQ password", "")
	if err != nil {
		return nil, err
	}
	return s.values(host, port, user, password, false), nil
}

func (s *QueueStrategy) values(host string, port int, user, password string, usingDocker bool) *appconfig.ConfigMap {
	m := appconfig.NewConfigMap()
	m.Set("use_queue", true)
	m.Set("queue_connection", "rabbitmq")
	m.Set("queue_host", host)
	m.Set("queue_port", port)
	m.Set("queue_user", user)
	m.Set("queue_password", password)
	m.Set("queue_vhost", "/")
	m.Set("queue_docker", usingDocker)
	return m
}
