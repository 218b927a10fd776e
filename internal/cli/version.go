package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"r2dash/internal/mirror"
	appver "r2dash/internal/version"
)

var versionJSON bool

type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
	// Opcodes lists the mirror wire opcodes by value.
	Opcodes []string `json:"mirror_opcodes"`
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build and mirror protocol info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print r2dash version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !versionJSON {
			// bare version for scripts
			_, err := fmt.Fprintln(out, appver.AppVersion)
			return err
		}
		info := versionInfo{Version: appver.AppVersion, Go: runtime.Version()}
		for _, op := range []mirror.Opcode{mirror.OpPatch, mirror.OpFull, mirror.OpSize} {
			info.Opcodes = append(info.Opcodes, op.String())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}
