package refresh

import (
	"time"

	"github.com/ettle/strcase"
	"github.com/urfave/cli/v2"

	"github.com/vulcanocraft/plugdex/internal/setup"
	"github.com/vulcanocraft/plugdex/pkg/logger"
)

const (
	flagInterval = "interval"
	flagDelay    = "delay"
	flagCooldown = "cooldown"
	flagOnce     = "once"
)

// Command creates the refresh command.
func Command() *cli.Command {
	cmd := &cli.Command{
		Name:        "refresh",
		Usage:       "Periodically re-resolve stored plugins",
		Description: "Run refresh cycles over the plugin database until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    flagInterval,
				Usage:   "Interval between refresh cycles",
				EnvVars: []string{strcase.ToSNAKE(flagInterval)},
				Value:   6 * time.Hour,
			},
			&cli.DurationFlag{
				Name:    flagDelay,
				Usage:   "Delay between plugins within a cycle",
				EnvVars: []string{strcase.ToSNAKE(flagDelay)},
				Value:   2 * time.Second,
			},
			&cli.DurationFlag{
				Name:    flagCooldown,
				Usage:   "Cooldown after a failed cycle",
				EnvVars: []string{strcase.ToSNAKE(flagCooldown)},
				Value:   time.Minute,
			},
			&cli.BoolFlag{
				Name:    flagOnce,
				Usage:   "Run a single refresh cycle and exit",
				EnvVars: []string{strcase.ToSNAKE(flagOnce)},
			},
		},
		Action: func(cliCtx *cli.Context) error {
			logger.Setup(cliCtx.String(setup.FlagLogLevel))

			return run(cliCtx.Context, buildConfig(cliCtx))
		},
	}

	cmd.Flags = append(cmd.Flags, setup.CommonFlags()...)
	cmd.Flags = append(cmd.Flags, setup.TracingFlags()...)

	return cmd
}
