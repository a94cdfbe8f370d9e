package resolve

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/vulcanocraft/plugdex/internal/setup"
)

// Config represents the configuration for the resolve command.
type Config struct {
	setup.Config

	URL      string
	Store    bool
	Owner    string
	Category string
	DBPath   string
}

func buildConfig(cliCtx *cli.Context) (Config, error) {
	if cliCtx.NArg() != 1 {
		return Config{}, errors.New("expected exactly one plugin URL argument")
	}

	return Config{
		Config:   setup.BuildConfig(cliCtx),
		URL:      cliCtx.Args().First(),
		Store:    cliCtx.Bool(flagStore),
		Owner:    cliCtx.String(flagOwner),
		Category: cliCtx.String(flagCategory),
		DBPath:   cliCtx.String(setup.FlagDBPath),
	}, nil
}
