// Package setup wires the shared pieces of the CLI commands: tracing, the
// HTTP clients, and the resolver.
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/ettle/strcase"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vulcanocraft/plugdex/pkg/adapters"
	"github.com/vulcanocraft/plugdex/pkg/client"
	"github.com/vulcanocraft/plugdex/pkg/resolver"
	"github.com/vulcanocraft/plugdex/pkg/tracer"
)

// Flag names shared by the commands.
const (
	FlagLogLevel         = "log-level"
	FlagGitHubToken      = "github-token"
	FlagCurseForgeAPIKey = "curseforge-api-key"
	FlagTimeout          = "timeout"
	FlagDBPath           = "db-path"

	flagTracingAddress     = "tracing-address"
	flagTracingInsecure    = "tracing-insecure"
	flagTracingUsername    = "tracing-username"
	flagTracingPassword    = "tracing-password"
	flagTracingProbability = "tracing-probability"
)

const serviceName = "plugdex"

// Config holds what both commands need to build a resolver.
type Config struct {
	GitHubToken      string
	CurseForgeAPIKey string
	Timeout          time.Duration
	Tracing          tracer.Config
}

// CommonFlags returns the flags shared by every command.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagLogLevel,
			Usage:   "Log level",
			EnvVars: []string{strcase.ToSNAKE(FlagLogLevel)},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    FlagGitHubToken,
			Usage:   "GitHub token, raises the API rate limit",
			EnvVars: []string{strcase.ToSNAKE(FlagGitHubToken)},
		},
		&cli.StringFlag{
			Name:    FlagCurseForgeAPIKey,
			Usage:   "CurseForge API key, required for structured CurseForge lookups",
			EnvVars: []string{strcase.ToSNAKE(FlagCurseForgeAPIKey)},
		},
		&cli.DurationFlag{
			Name:    FlagTimeout,
			Usage:   "Timeout for a single metadata field fetch",
			EnvVars: []string{strcase.ToSNAKE(FlagTimeout)},
			Value:   20 * time.Second,
		},
		&cli.StringFlag{
			Name:    FlagDBPath,
			Usage:   "Path to the plugin database",
			EnvVars: []string{strcase.ToSNAKE(FlagDBPath)},
			Value:   "plugdex.db",
		},
	}
}

// TracingFlags returns the tracing flags. Tracing is off unless an address is
// configured.
func TracingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagTracingAddress,
			Usage:   "Address to send traces",
			EnvVars: []string{strcase.ToSNAKE(flagTracingAddress)},
		},
		&cli.BoolFlag{
			Name:    flagTracingInsecure,
			Usage:   "use HTTP instead of HTTPS",
			EnvVars: []string{strcase.ToSNAKE(flagTracingInsecure)},
			Value:   true,
		},
		&cli.StringFlag{
			Name:    flagTracingUsername,
			Usage:   "Username to connect to the collector",
			EnvVars: []string{strcase.ToSNAKE(flagTracingUsername)},
		},
		&cli.StringFlag{
			Name:    flagTracingPassword,
			Usage:   "Password to connect to the collector",
			EnvVars: []string{strcase.ToSNAKE(flagTracingPassword)},
		},
		&cli.Float64Flag{
			Name:    flagTracingProbability,
			Usage:   "Probability to send traces",
			EnvVars: []string{strcase.ToSNAKE(flagTracingProbability)},
			Value:   0,
		},
	}
}

// BuildConfig reads the shared flags.
func BuildConfig(cliCtx *cli.Context) Config {
	return Config{
		GitHubToken:      cliCtx.String(FlagGitHubToken),
		CurseForgeAPIKey: cliCtx.String(FlagCurseForgeAPIKey),
		Timeout:          cliCtx.Duration(FlagTimeout),
		Tracing: tracer.Config{
			Address:     cliCtx.String(flagTracingAddress),
			Insecure:    cliCtx.Bool(flagTracingInsecure),
			Username:    cliCtx.String(flagTracingUsername),
			Password:    cliCtx.String(flagTracingPassword),
			Probability: cliCtx.Float64(flagTracingProbability),
			ServiceName: serviceName,
		},
	}
}

// Tracer sets up the OTLP trace provider when an address is configured, and a
// noop tracer otherwise. The returned stop function is always safe to call.
func Tracer(ctx context.Context, cfg tracer.Config) (trace.Tracer, func(), error) {
	if cfg.Address == "" {
		return noop.NewTracerProvider().Tracer(serviceName), func() {}, nil
	}

	provider, err := tracer.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure tracing: %w", err)
	}

	stop := func() {
		if err := provider.Stop(context.Background()); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to stop trace provider.")
		}
	}

	return provider.Tracer(serviceName), stop, nil
}

// Resolver builds the adapter registry and resolver.
//
// The GitHub token goes on a dedicated client so the Authorization header
// never reaches the other platforms.
func Resolver(ctx context.Context, cfg Config, tr trace.Tracer) (*resolver.Resolver, error) {
	httpClient, err := client.New(ctx,
		client.WithRetry(3, time.Second),
		client.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	options := []client.Option{client.WithTimeout(cfg.Timeout)}
	if cfg.GitHubToken != "" {
		options = append(options, client.WithToken(cfg.GitHubToken))
	}

	ghHTTPClient, err := client.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	registry := adapters.NewRegistry(httpClient, ghHTTPClient.GitHubClient(), cfg.CurseForgeAPIKey)

	return resolver.New(registry, tr, cfg.Timeout), nil
}
