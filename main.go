package main

import (
	"flag"
	"fmt"
	"os"

	"cpd/internal/di"
	"cpd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config.yaml", "path to config file")
	flag.BoolVar(&flags.DebugMode, "d", false, "debug mode (console logging)")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpd: %s\n", err)
		os.Exit(1)
	}
}
