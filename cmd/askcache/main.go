package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askcache-io/askcache/pkg/logging"
)

var version = "dev"

func main() {
	logging.Init()

	root := &cobra.Command{
		Use:     "askcache",
		Short:   "Approximate-match question/answer cache for LLM APIs",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newQuestionsCmd(),
		newStatsCmd(),
		newClearCmd(),
		newSyncCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
