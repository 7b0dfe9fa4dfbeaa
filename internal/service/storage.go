package service

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/naming"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/secret"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

const minioFragment = `  {{APP_NAME}}-minio:
    image: minio/minio:latest
    container_name: {{APP_NAME}}-minio
    restart: unless-stopped
    command: server /data --console-address ":9001"
    environment:
      MINIO_ROOT_USER: {{ACCESS_KEY}}
      MINIO_ROOT_PASSWORD: {{SECRET_KEY}}
    ports:
      - "9000:9000"
      - "9001:9001"
    volumes:
      - ./.phphive/minio:/data
`

const (
	minioPort        = 9000
	minioConsolePort = 9001
)

// StorageStrategy sets up MinIO object storage with a default bucket.
type StorageStrategy struct {
	Env *Env
}

func (s *StorageStrategy) Name() string { return "Object storage (MinIO)" }

func (s *StorageStrategy) Setup(app App, opts Options) (*Result, error) {
	bucket := naming.BucketName(app.Name)

	if s.Env.Docker.IsAvailable() {
		useDocker, err := s.Env.offerDocker("storage-docker", "MinIO")
		if err != nil {
			return nil, err
		}
		if useDocker {
			res, err := s.dockerSetup(app, bucket)
			if err == nil {
				return res, nil
			}
			ui.Warn(fmt.Sprintf("Docker setup for MinIO failed, falling back to local setup: %v", err))
		}
	} else if s.Env.Interactive {
		ui.Warn("Docker is not available; " + s.Env.Docker.InstallGuidance())
	}

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/minio/health/live", minioPort)

	return s.Env.runLocalPlan(opts, localPlan{
		display:  "MinIO",
		guidance: "install the minio server locally or start Docker and re-run",
		defaults: func() *appconfig.ConfigMap {
			// Stock minio defaults; credentials are only generated for
			// containers this tool provisions itself.
			return s.values("127.0.0.1", minioPort, "minioadmin", "minioadmin", bucket, false)
		},
		probe: func() error { return s.Env.probeHTTP(healthURL) },
		manual: func() (*appconfig.ConfigMap, error) {
			return s.manualEntry(bucket)
		},
		dockerRetry: s.retry(app, bucket),
	})
}

func (s *StorageStrategy) retry(app App, bucket string) func() (*Result, error) {
	if !s.Env.Docker.IsAvailable() {
		return nil
	}
	return func() (*Result, error) {
		res, err := s.dockerSetup(app, bucket)
		if err != nil {
			return nil, &SetupError{Service: "MinIO", Hint: "check docker logs for the minio container", Err: err}
		}
		return res, nil
	}
}

// dockerSetup provisions a MinIO container with freshly generated
// credentials and creates the default bucket inside it. Credentials are
// only ever echoed masked.
func (s *StorageStrategy) dockerSetup(app App, bucket string) (*Result, error) {
	accessKey := secret.AccessKey()
	secretKey := secret.SecretKey()

	provision := fmt.Sprintf(
		"mc alias set local http://127.0.0.1:%d %s %s && mc mb local/%s",
		minioPort, accessKey, secretKey, bucket,
	)

	err := s.Env.runDockerPlan(app, dockerPlan{
		serviceName:  app.Name + "-minio",
		templateName: "minio",
		inline:       minioFragment,
		vars: map[string]string{
			"APP_NAME":   app.Name,
			"ACCESS_KEY": accessKey,
			"SECRET_KEY": secretKey,
		},
		provision: provision,
	})
	if err != nil {
		return nil, err
	}

	if !s.Env.Quiet {
		ui.StepDone("MinIO", fmt.Sprintf("bucket %s, access key %s, secret %s",
			bucket, secret.Mask(accessKey), secret.Mask(secretKey)))
	}

	return &Result{UsingDocker: true, Values: s.values("127.0.0.1", minioPort, accessKey, secretKey, bucket, true)}, nil
}

func (s *StorageStrategy) manualEntry(defaultBucket string) (*appconfig.ConfigMap, error) {
	p := s.Env.Prompter
	host, err := p.Input("MinIO host", "", "127.0.0.1", "127.0.0.1")
	if err != nil {
		return nil, err
	}
	port, err := promptPort(p, "MinIO port", minioPort)
	if err != nil {
		return nil, err
	}
	accessKey, err := p.Input("MinIO access key", "", "", "")
	if err != nil {
		return nil, err
	}
	secretKey, err := p.Password("MinIO secret key", "")
	if err != nil {
		return nil, err
	}
	rawBucket, err := p.Input("Bucket name", "lowercase, 3-63 characters", defaultBucket, defaultBucket)
	if err != nil {
		return nil, err
	}
	return s.values(host, port, accessKey, secretKey, naming.BucketName(rawBucket), false), nil
}

func (s *StorageStrategy) values(host string, port int, accessKey, secretKey, bucket string, usingDocker bool) *appconfig.ConfigMap {
	m := appconfig.NewConfigMap()
	m.Set("use_minio", true)
	m.Set("minio_host", host)
	m.Set("minio_port", port)
	m.Set("minio_console_port", minioConsolePort)
	m.Set("minio_access_key", accessKey)
	m.Set("minio_secret_key", secretKey)
	m.Set("minio_bucket", bucket)
	m.Set("minio_use_ssl", false)
	m.Set("minio_docker", usingDocker)
	return m
}
