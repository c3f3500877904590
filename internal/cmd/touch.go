package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch",
	Short: "Bump the record's last_updated time",
	Args:  cobra.NoArgs,
	RunE:  runTouch,
}

func init() {
	rootCmd.AddCommand(touchCmd)
}

func runTouch(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if _, err := ws.store.Touch(ws.root.Path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Touched %s\n", ws.store.Path(ws.root.Path))
	return nil
}
