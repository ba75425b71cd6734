// backup_client is a command-line client for the backup service API.
//
// It authenticates against a Keystone-compatible identity service, resolves
// the backup endpoint from the service catalog (or takes it from
// --os-backup-url) and manages jobs, sessions, actions, clients and backups.
//
// Usage:
//
//	backup_client job-list [--client ID] [--search TERM]
//	backup_client session-start --session-id S --job-id J --job-tag 3
//
// Options are read, lowest precedence first, from the OS_* environment
// (optionally pre-loaded with --env-file), a YAML file (--config) and the
// command-line flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjacquet/backup_client/internal/apierrors"
	"github.com/fjacquet/backup_client/internal/backupapi"
	"github.com/fjacquet/backup_client/internal/identity"
	"github.com/fjacquet/backup_client/internal/logging"
	"github.com/fjacquet/backup_client/internal/models"
	"github.com/fjacquet/backup_client/internal/telemetry"
	"github.com/fjacquet/backup_client/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	programName     = "backup_client"
	programVersion  = "1.0.0"
	shutdownTimeout = 10 * time.Second // Maximum time to flush spans on exit
)

// app carries the global flags and the resources shared by every command
// of one run.
type app struct {
	flags models.Options

	configFile   string
	envFile      string
	debug        bool
	logFormat    string
	logFile      string
	format       string
	metricsFile  string
	otelEndpoint string
	otelRate     float64
	otelSecure   bool

	stdout    io.Writer
	stderr    io.Writer
	lookupEnv models.LookupFunc

	// extra client options, used by tests to pin the hostname
	clientOptions []backupapi.ClientOption

	opts      models.Options
	registry  *prometheus.Registry
	metrics   *backupapi.RequestMetrics
	telemetry *telemetry.Manager
	logCloser io.Closer
	client    *backupapi.Client
}

func newApp(stdout, stderr io.Writer, lookup models.LookupFunc) *app {
	return &app{
		stdout:    stdout,
		stderr:    stderr,
		lookupEnv: lookup,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Command-line client for the backup service API",
		Version:       programVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.Username, "os-username", "", "Name used for authentication with the identity service")
	pf.StringVar(&a.flags.Password, "os-password", "", "Password used for authentication with the identity service")
	pf.StringVar(&a.flags.Token, "os-token", "", "Pre-existing token, used instead of username/password")
	pf.StringVar(&a.flags.ProjectName, "os-project-name", "", "Project name to scope to")
	pf.StringVar(&a.flags.ProjectID, "os-project-id", "", "Project id to scope to")
	pf.StringVar(&a.flags.TenantName, "os-tenant-name", "", "Tenant name (identity v2.0)")
	pf.StringVar(&a.flags.TenantID, "os-tenant-id", "", "Tenant id (identity v2.0)")
	pf.StringVar(&a.flags.UserDomainName, "os-user-domain-name", "", "User domain name")
	pf.StringVar(&a.flags.UserDomainID, "os-user-domain-id", "", "User domain id")
	pf.StringVar(&a.flags.ProjectDomainName, "os-project-domain-name", "", "Project domain name")
	pf.StringVar(&a.flags.ProjectDomainID, "os-project-domain-id", "", "Project domain id")
	pf.StringVar(&a.flags.RegionName, "os-region-name", "", "Region used to pick catalog endpoints")
	pf.StringVar(&a.flags.AuthURL, "os-auth-url", "", "Identity service URL")
	pf.StringVar(&a.flags.BackupURL, "os-backup-url", "", "Backup API URL, skips the catalog lookup")
	pf.StringVar(&a.flags.EndpointType, "os-endpoint-type", "", "Catalog interface: public, internal or admin (default public)")
	pf.StringVar(&a.flags.IdentityAPIVersion, "os-identity-api-version", "", "Identity API version: 3 or 2.0 (guessed from the auth URL when unset)")
	pf.StringVar(&a.flags.BackupAPIVersion, "os-backup-api-version", "", "Backup API version: 1 or 2 (default 2)")
	pf.StringVar(&a.flags.CACert, "os-cacert", "", "CA bundle used to verify TLS servers")
	pf.StringVar(&a.flags.Cert, "os-cert", "", "Client certificate for TLS")
	pf.StringVar(&a.flags.Key, "os-key", "", "Client certificate key for TLS")
	pf.BoolVar(&a.flags.Insecure, "insecure", false, "Skip TLS certificate verification")
	pf.StringVar(&a.flags.Timeout, "timeout", "", "HTTP request timeout, e.g. 30s (default 1m)")

	pf.StringVarP(&a.configFile, "config", "c", "", "YAML file with client options")
	pf.StringVar(&a.envFile, "env-file", "", "openrc-style file with OS_* variables")
	pf.BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")
	pf.StringVar(&a.logFormat, "log-format", logging.FormatText, "Log format: text or json")
	pf.StringVar(&a.logFile, "log-file", "", "Also write logs to this file")
	pf.StringVarP(&a.format, "format", "f", FormatTable, "Output format: table, json or yaml")
	pf.StringVar(&a.metricsFile, "metrics-file", "", "Write request metrics to this file (Prometheus text format)")
	pf.StringVar(&a.otelEndpoint, "otel-endpoint", "", "OTLP gRPC collector endpoint; enables tracing")
	pf.Float64Var(&a.otelRate, "otel-sampling-rate", 1.0, "Fraction of traces to keep, 0 to 1")
	pf.BoolVar(&a.otelSecure, "otel-tls", false, "Use TLS towards the OTLP collector")

	rootCmd.AddCommand(newJobCommands(a)...)
	rootCmd.AddCommand(newBackupCommands(a)...)
	rootCmd.AddCommand(newClientCommands(a)...)
	rootCmd.AddCommand(newSessionCommands(a)...)
	rootCmd.AddCommand(newActionCommands(a)...)

	return rootCmd
}

// setup configures logging, resolves options and starts telemetry.
func (a *app) setup(ctx context.Context) error {
	level := ""
	if a.debug {
		level = "debug"
	}
	closer, err := logging.Setup(logging.Config{
		Level:  level,
		Format: a.logFormat,
		File:   a.logFile,
		Output: a.stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.logCloser = closer
	log.Debug("Debug mode enabled")

	if _, err := newPrinter(a.stdout, a.format); err != nil {
		return err
	}
	if a.otelRate < 0 || a.otelRate > 1 {
		return fmt.Errorf("invalid sampling rate %g: must be between 0 and 1", a.otelRate)
	}

	opts, err := a.resolveOptions()
	if err != nil {
		return err
	}
	a.opts = opts
	log.Debugf("Resolved options: %s", opts)

	a.registry = prometheus.NewRegistry()
	a.metrics, err = backupapi.NewRequestMetrics(a.registry)
	if err != nil {
		return err
	}

	if a.otelEndpoint != "" {
		a.telemetry = telemetry.NewManager(telemetry.Config{
			Enabled:        true,
			Endpoint:       a.otelEndpoint,
			Insecure:       !a.otelSecure,
			SamplingRate:   a.otelRate,
			ServiceName:    programName,
			ServiceVersion: programVersion,
			BackupEndpoint: opts.BackupURL,

			BackupAPIVersion: opts.BackupAPIVersion,
		})
		initCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := a.telemetry.Initialize(initCtx); err != nil {
			log.Warnf("Failed to initialize OpenTelemetry: %v. Continuing without tracing.", err)
		}
	}

	return nil
}

// resolveOptions layers env (with the optional env file underneath it),
// the YAML config file and the flags.
func (a *app) resolveOptions() (models.Options, error) {
	lookup := a.lookupEnv
	if a.envFile != "" {
		fileLookup, err := models.ReadEnvFile(a.envFile)
		if err != nil {
			return models.Options{}, err
		}
		lookup = chainLookup(a.lookupEnv, fileLookup)
	}
	opts := models.FromEnv(lookup)

	if a.configFile != "" {
		if !utils.FileExists(a.configFile) {
			return models.Options{}, fmt.Errorf("config file not found: %s", a.configFile)
		}
		fileOpts, err := utils.ReadConfigFile(a.configFile)
		if err != nil {
			return models.Options{}, err
		}
		opts = opts.Merge(fileOpts)
	}

	opts = opts.Merge(a.flags)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return models.Options{}, &apierrors.ConfigurationError{Msg: err.Error()}
	}
	return opts, nil
}

// chainLookup consults each lookup in order; exported variables shadow
// the ones from the env file.
func chainLookup(lookups ...models.LookupFunc) models.LookupFunc {
	return func(key string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if v, ok := l(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

// backupClient builds the facade on first use.
func (a *app) backupClient() (*backupapi.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	options := []backupapi.ClientOption{backupapi.WithMetrics(a.metrics)}
	if a.telemetry != nil && a.telemetry.IsEnabled() {
		options = append(options, backupapi.WithTracerProvider(a.telemetry.TracerProvider()))
	}
	options = append(options, a.clientOptions...)

	c, err := backupapi.NewClient(a.opts.BackupAPIVersion, a.opts, options...)
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *app) printer() *printer {
	p, _ := newPrinter(a.stdout, a.format)
	return p
}

// teardown releases everything setup acquired. Errors are logged, not
// returned, so that the command's own error stays the one reported.
func (a *app) teardown() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			log.Warnf("Failed to close backup client: %v", err)
		}
	}

	if a.metricsFile != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
			log.Errorf("Failed to write metrics file %s: %v", a.metricsFile, err)
		}
	}

	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			log.Warnf("Telemetry shutdown warning: %v", err)
		}
	}

	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// describeError turns well-known failures into actionable messages.
func (a *app) describeError(err error) string {
	var endpointErr *identity.EndpointNotFoundError
	if errors.As(err, &endpointErr) {
		return fmt.Sprintf(telemetry.ErrEndpointTemplate, err)
	}
	if apierrors.StatusCode(err) == http.StatusUnauthorized {
		return fmt.Sprintf(telemetry.ErrAuthTemplate, a.opts.AuthURL, err)
	}
	return err.Error()
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, a *app, args []string) int {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	a.teardown()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %s\n", a.describeError(err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, newApp(os.Stdout, os.Stderr, os.LookupEnv), os.Args[1:])
	stop()
	os.Exit(code)
}
