package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ilpatch/internal/diagfmt"
	"ilpatch/internal/driver"
	"ilpatch/internal/version"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] [path]",
	Short: "Check plug declarations without patching",
	Long: `Validate checks every plug declaration visible through patch.toml:
targets exist, plug containers are static, and every extern method of a
plugged target is covered by a substitution. Nothing is modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Int("jobs", 0, "max parallel workers for module loading (0=auto)")
	validateCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifestArg(args)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	opts, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}

	res, err := driver.ValidateOnly(cmd.Context(), manifest, opts)
	if err != nil {
		return err
	}

	switch format {
	case "pretty", "json":
		return reportFaults(cmd, res.Bag, format)
	case "sarif":
		if err := diagfmt.Sarif(cmd.OutOrStdout(), res.Bag, diagfmt.SarifRunMeta{
			ToolName:    "ilpatch",
			ToolVersion: version.Version,
		}); err != nil {
			return err
		}
		if res.Bag.HasFatal() {
			return fmt.Errorf("%d fatal fault(s)", countErrors(res.Bag))
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or sarif)", format)
	}
}
