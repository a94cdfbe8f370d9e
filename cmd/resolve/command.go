package resolve

import (
	"github.com/ettle/strcase"
	"github.com/urfave/cli/v2"

	"github.com/vulcanocraft/plugdex/internal/setup"
	"github.com/vulcanocraft/plugdex/pkg/logger"
)

const (
	flagStore    = "store"
	flagOwner    = "owner"
	flagCategory = "category"
)

// Command creates the resolve command.
func Command() *cli.Command {
	cmd := &cli.Command{
		Name:        "resolve",
		Usage:       "Resolve plugin metadata from a URL",
		Description: "Classify the URL, fetch the metadata from its platform and print the record",
		ArgsUsage:   "URL",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagStore,
				Usage:   "Store the resolved record in the database",
				EnvVars: []string{strcase.ToSNAKE(flagStore)},
			},
			&cli.StringFlag{
				Name:    flagOwner,
				Usage:   "Owner to store the record under",
				EnvVars: []string{strcase.ToSNAKE(flagOwner)},
			},
			&cli.StringFlag{
				Name:    flagCategory,
				Usage:   "Category to store the record under",
				EnvVars: []string{strcase.ToSNAKE(flagCategory)},
			},
		},
		Action: func(cliCtx *cli.Context) error {
			logger.Setup(cliCtx.String(setup.FlagLogLevel))

			cfg, err := buildConfig(cliCtx)
			if err != nil {
				return err
			}

			return run(cliCtx.Context, cfg)
		},
	}

	cmd.Flags = append(cmd.Flags, setup.CommonFlags()...)
	cmd.Flags = append(cmd.Flags, setup.TracingFlags()...)

	return cmd
}
