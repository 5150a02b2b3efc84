package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Agenda bot - posts the team's recurring process message",
	Long: `Agenda bot decides once per run whether a recurring team-process
message is due, composes it from the configured schedule slot,
recurring lines and the open review queue, and delivers it to a
chat webhook.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
