package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

const mysqlFragment = `  {{APP_NAME}}-mysql:
    image: mysql:8.4
    container_name: {{APP_NAME}}-mysql
    restart: unless-stopped
    environment:
      MYSQL_ROOT_PASSWORD: {{PASSWORD}}
      MYSQL_DATABASE: {{DATABASE}}
    ports:
      - "3306:3306"
    volumes:
      - ./.phphive/mysql:/var/lib/mysql
`

const mariadbFragment = `  {{APP_NAME}}-mariadb:
    image: mariadb:11
    container_name: {{APP_NAME}}-mariadb
    restart: unless-stopped
    environment:
      MARIADB_ROOT_PASSWORD: {{PASSWORD}}
      MARIADB_DATABASE: {{DATABASE}}
    ports:
      - "3306:3306"
    volumes:
      - ./.phphive/mariadb:/var/lib/mysql
`

const pgsqlFragment = `  {{APP_NAME}}-pgsql:
    image: postgres:17-alpine
    container_name: {{APP_NAME}}-pgsql
    restart: unless-stopped
    environment:
      POSTGRES_PASSWORD: {{PASSWORD}}
      POSTGRES_DB: {{DATABASE}}
    ports:
      - "5432:5432"
    volumes:
      - ./.phphive/pgsql:/var/lib/postgresql/data
`

// dockerDBPassword is the fixed root password for scaffolded dev databases.
const dockerDBPassword = "password"

type dbEngine struct {
	display  string
	port     int
	user     string
	fragment string
}

var dbEngines = map[string]dbEngine{
	"mysql":   {display: "MySQL", port: 3306, user: "root", fragment: mysqlFragment},
	"mariadb": {display: "MariaDB", port: 3306, user: "root", fragment: mariadbFragment},
	"pgsql":   {display: "PostgreSQL", port: 5432, user: "postgres", fragment: pgsqlFragment},
}

// DatabaseStrategy sets up the application database.
type DatabaseStrategy struct {
	Env *Env
}

func (s *DatabaseStrategy) Name() string { return "Database" }

func (s *DatabaseStrategy) Setup(app App, opts Options) (*Result, error) {
	engines := opts.Databases
	if len(engines) == 0 {
		engines = []string{"mysql", "mariadb", "pgsql"}
	}

	engine, err := prompt.String(s.Env.flag("database"), s.Env.Interactive, func() (string, error) {
		options := make([]prompt.Option, 0, len(engines))
		for _, e := range engines {
			options = append(options, prompt.Option{Label: dbEngines[e].display, Value: e})
		}
		return s.Env.Prompter.Select("Which database engine?", "", options, engines[0])
	}, engines[0])
	if err != nil {
		return nil, err
	}
	// A flag can name any engine; only the ones the app type offers are
	// valid here.
	meta, ok := dbEngines[engine]
	if !ok || !slices.Contains(engines, engine) {
		return nil, fmt.Errorf("unsupported database engine %q (supported: %s)", engine, strings.Join(engines, ", "))
	}

	dbName := strings.ReplaceAll(app.Name, "-", "_")

	if s.Env.Docker.IsAvailable() {
		useDocker, err := s.Env.offerDocker("database-docker", meta.display)
		if err != nil {
			return nil, err
		}
		if useDocker {
			err := s.dockerSetup(app, engine, dbName)
			if err == nil {
				return &Result{UsingDocker: true, Values: s.values(engine, "127.0.0.1", meta.port, dbName, meta.user, dockerDBPassword, true)}, nil
			}
			ui.Warn(fmt.Sprintf("Docker setup for %s failed, falling back to local setup: %v", meta.display, err))
		}
	} else if s.Env.Interactive {
		ui.Warn("Docker is not available; " + s.Env.Docker.InstallGuidance())
	}

	return s.Env.runLocalPlan(opts, localPlan{
		display:  meta.display,
		guidance: "install " + meta.display + " locally or start Docker and re-run",
		defaults: func() *appconfig.ConfigMap {
			return s.values(engine, "127.0.0.1", meta.port, dbName, meta.user, "", false)
		},
		probe: func() error { return s.Env.probeTCP("127.0.0.1", meta.port) },
		manual: func() (*appconfig.ConfigMap, error) {
			return s.manualEntry(engine, meta, dbName)
		},
		dockerRetry: s.dockerRetry(app, opts, engine, meta, dbName),
	})
}

func (s *DatabaseStrategy) dockerRetry(app App, opts Options, engine string, meta dbEngine, dbName string) func() (*Result, error) {
	if !s.Env.Docker.IsAvailable() {
		return nil
	}
	return func() (*Result, error) {
		if err := s.dockerSetup(app, engine, dbName); err != nil {
			return nil, &SetupError{Service: meta.display, Hint: "check docker logs for the " + engine + " container", Err: err}
		}
		return &Result{UsingDocker: true, Values: s.values(engine, "127.0.0.1", meta.port, dbName, meta.user, dockerDBPassword, true)}, nil
	}
}

func (s *DatabaseStrategy) dockerSetup(app App, engine, dbName string) error {
	return s.Env.runDockerPlan(app, dockerPlan{
		serviceName:  app.Name + "-" + engine,
		templateName: engine,
		inline:       dbEngines[engine].fragment,
		vars: map[string]string{
			"APP_NAME": app.Name,
			"PASSWORD": dockerDBPassword,
			"DATABASE": dbName,
		},
	})
}

func (s *DatabaseStrategy) manualEntry(engine string, meta dbEngine, dbName string) (*appconfig.ConfigMap, error) {
	p := s.Env.Prompter
	host, err := p.Input("Database host", "", "127.0.0.1", "127.0.0.1")
	if err != nil {
		return nil, err
	}
	port, err := promptPort(p, "Database port", meta.port)
	if err != nil {
		return nil, err
	}
	name, err := p.Input("Database name", "", dbName, dbName)
	if err != nil {
		return nil, err
	}
	user, err := p.Input("Database user", "", meta.user, meta.user)
	if err != nil {
		return nil, err
	}
	password, err := p.Password("Database password", "leave empty for none")
	if err != nil {
		return nil, err
	}
	return s.values(engine, host, port, name, user, password, false), nil
}

func (s *DatabaseStrategy) values(engine, host string, port int, name, user, password string, usingDocker bool) *appconfig.ConfigMap {
	m := appconfig.NewConfigMap()
	m.Set("db_connection", engine)
	m.Set("db_host", host)
	m.Set("db_port", port)
	m.Set("db_name", name)
	m.Set("db_user", user)
	m.Set("db_password", password)
	m.Set("db_docker", usingDocker)
	return m
}
