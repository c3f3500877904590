package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/mindcontext/internal/focus"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the focus record as JSON or YAML",
	Long: `Print the focus record. YAML output keeps the record's field order,
including the order of decisions and sessions.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var exportFormat string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", focus.FormatJSON, "output format: json or yaml")
}

func runExport(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	state, err := ws.store.Read(ws.root.Path)
	if err != nil {
		return err
	}
	data, err := focus.Export(state, exportFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
