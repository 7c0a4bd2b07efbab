package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/glomers/node"
)

var rootCmd = &cobra.Command{
	Use:   "glomers <role>",
	Short: "Maelstrom-style gossip nodes",
	Long: fmt.Sprintf(`Run one node process. The node reads newline-delimited JSON envelopes on
stdin and writes its replies and gossip on stdout. Logs go to stderr.

Roles: %s

Examples:
  glomers echo
  glomers broadcast-with-topology
  echo '{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}' | glomers echo`, strings.Join(node.RoleNames(), ", ")),
	Args:          cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs:     node.RoleNames(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStart,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
