package refresh

import (
	"github.com/urfave/cli/v2"

	"github.com/vulcanocraft/plugdex/internal/setup"
	"github.com/vulcanocraft/plugdex/pkg/scheduler"
)

// Config represents the configuration for the refresh command.
type Config struct {
	setup.Config

	Scheduler scheduler.Config
	Once      bool
	DBPath    string
}

func buildConfig(cliCtx *cli.Context) Config {
	return Config{
		Config: setup.BuildConfig(cliCtx),
		Scheduler: scheduler.Config{
			Interval: cliCtx.Duration(flagInterval),
			Delay:    cliCtx.Duration(flagDelay),
			Cooldown: cliCtx.Duration(flagCooldown),
		},
		Once:   cliCtx.Bool(flagOnce),
		DBPath: cliCtx.String(setup.FlagDBPath),
	}
}
