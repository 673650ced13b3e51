package main

import (
	"flag"
	"fmt"
	"os"

	"jobdeck/internal/di"
	"jobdeck/internal/structures"

	"github.com/joho/godotenv"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config/config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "jobdeck: %s\n", err)
		os.Exit(1)
	}
}
