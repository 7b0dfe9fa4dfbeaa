package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

// SearchEngineNone short-circuits the search step with no further prompts.
const SearchEngineNone = "none"

const meilisearchFragment = `  {{APP_NAME}}-meilisearch:
    image: getmeili/meilisearch:v1.12
    container_name: {{APP_NAME}}-meilisearch
    restart: unless-stopped
    environment:
      MEILI_MASTER_KEY: {{MASTER_KEY}}
      MEILI_NO_ANALYTICS: "true"
    ports:
      - "7700:7700"
    volumes:
      - ./.phphive/meilisearch:/meili_data
`

const elasticsearchFragment = `  {{APP_NAME}}-elasticsearch:
    image: elasticsearch:8.17.0
    container_name: {{APP_NAME}}-elasticsearch
    restart: unless-stopped
    environment:
      discovery.type: single-node
      xpack.security.enabled: "false"
      ES_JAVA_OPTS: -Xms512m -Xmx512m
    ports:
      - "9200:9200"
    volumes:
      - ./.phphive/elasticsearch:/usr/share/elasticsearch/data
`

const opensearchFragment = `  {{APP_NAME}}-opensearch:
    image: opensearchproject/opensearch:2
    container_name: {{APP_NAME}}-opensearch
    restart: unless-stopped
    environment:
      discovery.type: single-node
      DISABLE_SECURITY_PLUGIN: "true"
      OPENSEARCH_JAVA_OPTS: -Xms512m -Xmx512m
    ports:
      - "9200:9200"
    volumes:
      - ./.phphive/opensearch:/usr/share/opensearch/data
`

const typesenseFragment = `  {{APP_NAME}}-typesense:
    image: typesense/typesense:27.1
    container_name: {{APP_NAME}}-typesense
    restart: unless-stopped
    command: --data-dir /data --api-key={{API_KEY}}
    ports:
      - "8108:8108"
    volumes:
      - ./.phphive/typesense:/data
`

type searchEngine struct {
	display    string
	port       int
	defaultKey string
	healthPath string
	fragment   string
	keyVar     string // fragment token carrying the key, empty when keyless
}

var searchEngines = map[string]searchEngine{
	"meilisearch":   {display: "Meilisearch", port: 7700, defaultKey: "masterKey", healthPath: "/health", fragment: meilisearchFragment, keyVar: "MASTER_KEY"},
	"elasticsearch": {display: "Elasticsearch", port: 9200, healthPath: "/_cluster/health", fragment: elasticsearchFragment},
	"opensearch":    {display: "OpenSearch", port: 9200, healthPath: "/_cluster/health", fragment: opensearchFragment},
	"typesense":     {display: "Typesense", port: 8108, defaultKey: "localdevkey", healthPath: "/health", fragment: typesenseFragment, keyVar: "API_KEY"},
}

// SearchStrategy sets up the chosen search engine. Dispatch is an explicit
// switch over the enumerated engine identifiers.
type SearchStrategy struct {
	Env *Env
}

func (s *SearchStrategy) Name() string { return "Search engine" }

func (s *SearchStrategy) Setup(app App, opts Options) (*Result, error) {
	engines := opts.SearchEngines
	if len(engines) == 0 {
		engines = []string{SearchEngineNone, "meilisearch", "elasticsearch", "typesense"}
	}

	engine, err := prompt.String(s.Env.flag("search"), s.Env.Interactive, func() (string, error) {
		options := make([]prompt.Option, 0, len(engines))
		for _, e := range engines {
			label := "None"
			if e != SearchEngineNone {
				label = searchEngines[e].display
			}
			options = append(options, prompt.Option{Label: label, Value: e})
		}
		return s.Env.Prompter.Select("Which search engine?", "", options, engines[0])
	}, engines[0])
	if err != nil {
		return nil, err
	}

	// A flag can name any engine; only the ones the app type offers are
	// valid here.
	if !slices.Contains(engines, engine) {
		return nil, fmt.Errorf("unsupported search engine %q (offered: %s)", engine, strings.Join(engines, ", "))
	}

	switch engine {
	case SearchEngineNone:
		return &Result{Values: appconfig.NewConfigMap()}, nil
	case "meilisearch", "elasticsearch", "opensearch", "typesense":
		return s.setupEngine(app, opts, engine)
	default:
		return nil, fmt.Errorf("unsupported search engine %q (supported: %s)", engine, strings.Join(engines, ", "))
	}
}

func (s *SearchStrategy) setupEngine(app App, opts Options, engine string) (*Result, error) {
	meta := searchEngines[engine]
	key := meta.defaultKey

	if s.Env.Docker.IsAvailable() {
		useDocker, err := s.Env.offerDocker("search-docker", meta.display)
		if err != nil {
			return nil, err
		}
		if useDocker {
			err := s.dockerSetup(app, engine, key)
			if err == nil {
				return &Result{UsingDocker: true, Values: s.values(engine, "127.0.0.1", meta.port, key, true)}, nil
			}
			ui.Warn(fmt.Sprintf("Docker setup for %s failed, falling back to local setup: %v", meta.display, err))
		}
	} else if s.Env.Interactive {
		ui.Warn("Docker is not available; " + s.Env.Docker.InstallGuidance())
	}

	healthURL := fmt.Sprintf("http://127.0.0.1:%d%s", meta.port, meta.healthPath)

	return s.Env.runLocalPlan(opts, localPlan{
		display:  meta.display,
		guidance: "install " + meta.display + " locally or start Docker and re-run",
		defaults: func() *appconfig.ConfigMap { return s.values(engine, "127.0.0.1", meta.port, key, false) },
		probe:    func() error { return s.Env.probeHTTP(healthURL) },
		manual: func() (*appconfig.ConfigMap, error) {
			return s.manualEntry(engine, meta)
		},
		dockerRetry: s.retry(app, engine, meta, key),
	})
}

func (s *SearchStrategy) retry(app App, engine string, meta searchEngine, key string) func() (*Result, error) {
	if !s.Env.Docker.IsAvailable() {
		return nil
	}
	return func() (*Result, error) {
		if err := s.dockerSetup(app, engine, key); err != nil {
			return nil, &SetupError{Service: meta.display, Hint: "check docker logs for the " + engine + " container", Err: err}
		}
		return &Result{UsingDocker: true, Values: s.values(engine, "127.0.0.1", meta.port, key, true)}, nil
	}
}

func (s *SearchStrategy) dockerSetup(app App, engine, key string) error {
	meta := searchEngines[engine]
	vars := map[string]string{"APP_NAME": app.Name}
	if meta.keyVar != "" {
		vars[meta.keyVar] = key
	}
	return s.Env.runDockerPlan(app, dockerPlan{
		serviceName:  app.Name + "-" + engine,
		templateName: engine,
		inline:       meta.fragment,
		vars:         vars,
	})
}

func (s *SearchStrategy) manualEntry(engine string, meta searchEngine) (*appconfig.ConfigMap, error) {
	p := s.Env.Prompter
	host, err := p.Input(meta.display+" host", "", "127.0.0.1", "127.0.0.1")
	if err != nil {
		return nil, err
	}
	port, err := promptPort(p, meta.display+" port", meta.port)
	if err != nil {
		return nil, err
	}
	key := ""
	if meta.keyVar != "" {
		key, err = p.Password(meta.display+" API key", "leave empty for none")
		if err != nil {
			return nil, err
		}
	}
	return s.values(engine, host, port, key, false), nil
}

func (s *SearchStrategy) values(engine, host string, port int, key string, usingDocker bool) *appconfig.ConfigMap {
	m := appconfig.NewConfigMap()
	m.Set("search_engine", engine)
	m.Set("search_host", host)
	m.Set("search_port", port)
	m.Set("search_key", key)
	m.Set("search_docker", usingDocker)
	return m
}
