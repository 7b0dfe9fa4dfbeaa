package service

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/compose"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

// dockerPlan describes the container side of one subsystem setup.
type dockerPlan struct {
	serviceName   string // container/service name, e.g. shop-mysql
	templateName  string // override template file name, e.g. "mysql"
	inline        string // built-in compose fragment
	vars          map[string]string
	provision     string // optional one-shot command run inside the service
	readyAttempts int
}

// runDockerPlan merges the service fragment into the app's compose file,
// starts it, waits for readiness, and runs any one-shot provisioning.
func (e *Env) runDockerPlan(app App, plan dockerPlan) error {
	tmpl := compose.LoadTemplate(e.TemplateDir, plan.templateName, plan.inline)
	fragment := compose.Substitute(tmpl, plan.vars)

	path := filepath.Join(app.Dir, compose.DefaultFile)
	if _, err := compose.Merge(path, plan.serviceName, fragment); err != nil {
		return err
	}

	err := ui.WithSpinner(e.Quiet, "Starting "+plan.serviceName+"...", func() error {
		return e.Docker.Up(app.Dir, compose.DefaultFile)
	})
	if err != nil {
		return err
	}

	var ready bool
	_ = ui.WithSpinner(e.Quiet, "Waiting for "+plan.serviceName+" to be ready...", func() error {
		ready = e.Docker.WaitReady(app.Dir, compose.DefaultFile, plan.serviceName, plan.readyAttempts)
		return nil
	})
	if !ready {
		return fmt.Errorf("%s did not become ready in time", plan.serviceName)
	}

	if plan.provision != "" {
		return ui.WithSpinner(e.Quiet, "Provisioning "+plan.serviceName+"...", func() error {
			return e.Docker.ExecOneShot(app.Dir, compose.DefaultFile, plan.serviceName, plan.provision)
		})
	}
	return nil
}

// offerDocker resolves the "use Docker for X?" question: flag first, then an
// interactive confirm, then true.
func (e *Env) offerDocker(flagName, display string) (bool, error) {
	return prompt.Bool(e.flag(flagName), e.Interactive, func() (bool, error) {
		return e.Prompter.Confirm("Use Docker for "+display+"?",
			"A container will be added to docker-compose.yml", true)
	}, true)
}

// localPlan describes the non-Docker side of one subsystem setup.
type localPlan struct {
	display  string
	guidance string // install hint shown on the fatal path
	defaults func() *appconfig.ConfigMap
	probe    func() error // reachability check against the default endpoint
	manual   func() (*appconfig.ConfigMap, error)
	// dockerRetry loops back to the Docker setup; nil when the daemon is
	// unavailable.
	dockerRetry func() (*Result, error)
}

// runLocalPlan implements the LocalSetup half of the state machine.
// Non-interactive runs return hard defaults without any network probe.
func (e *Env) runLocalPlan(opts Options, plan localPlan) (*Result, error) {
	if !e.Interactive {
		return &Result{Values: plan.defaults()}, nil
	}

	running, err := e.Prompter.Confirm("Is "+plan.display+" already running locally?", "", true)
	if err != nil {
		return nil, err
	}

	if running {
		if err := plan.probe(); err == nil {
			return &Result{Values: plan.defaults()}, nil
		}
		ui.Warn(plan.display + " is not reachable on its default endpoint")

		if plan.dockerRetry != nil {
			retry, err := e.Prompter.Confirm("Start "+plan.display+" with Docker instead?", "", true)
			if err != nil {
				return nil, err
			}
			if retry {
				return plan.dockerRetry()
			}
		}

		if opts.fallback() == FallbackFatal {
			return nil, &SetupError{Service: plan.display, Hint: plan.guidance}
		}
	}

	values, err := plan.manual()
	if err != nil {
		return nil, err
	}
	return &Result{Values: values}, nil
}

// promptPort asks for a port number with validation.
func promptPort(p prompt.Prompter, title string, defaultPort int) (int, error) {
	def := strconv.Itoa(defaultPort)
	raw, err := p.Input(title, "", def, def)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	return port, nil
}
