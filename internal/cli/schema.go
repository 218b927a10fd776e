package cli

import (
	jsoniter "encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"r2dash/internal/command"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of script commands",
	Long:  "Prints the JSON Schema of the objects scripts pass to sys.send or return from update.",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := jsoniter.MarshalIndent(command.Schema(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}
