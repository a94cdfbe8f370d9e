package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/vulcanocraft/plugdex/cmd/refresh"
	"github.com/vulcanocraft/plugdex/cmd/resolve"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "plugdex",
		Usage: "Minecraft plugin metadata resolver",
		Commands: []*cli.Command{
			resolve.Command(),
			refresh.Command(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("Error while executing command")
	}
}
