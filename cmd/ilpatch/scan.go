package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ilpatch/internal/driver"
	"ilpatch/internal/plug"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [path]",
	Short: "Scan replacement modules and print the plug registry",
	Long: `Scan discovers plug markers in the replacement modules named by
patch.toml, resolves their targets against the target module and the
resolution catalog, and prints the registered substitutions without
patching anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Int("jobs", 0, "max parallel workers for module loading (0=auto)")
	scanCmd.Flags().String("format", "pretty", "fault output format (pretty|json)")
}

func runScan(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifestArg(args)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	opts, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}

	res, err := driver.ScanOnly(cmd.Context(), manifest, opts)
	if err != nil {
		return err
	}

	if format == "pretty" {
		useColor, err := readColorMode(cmd)
		if err != nil {
			return err
		}
		dumpRegistry(cmd.OutOrStdout(), res.Registry, useColor)
	}
	if err := maybePrintTimings(cmd, res); err != nil {
		return err
	}
	return reportFaults(cmd, res.Bag, format)
}

// dumpRegistry prints every registered substitution grouped by target type,
// in the deterministic order the registry exposes.
func dumpRegistry(w io.Writer, reg *plug.Registry, useColor bool) {
	head := color.New(color.Bold)
	dim := color.New(color.Faint)
	if !useColor {
		head.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprintf(w, "%d substitution(s) across %d target(s)\n", reg.Len(), len(reg.Targets()))
	for _, target := range reg.Targets() {
		fmt.Fprintf(w, "\n%s\n", head.Sprint(target))
		if d := reg.TypeFor(target); d != nil {
			fmt.Fprintf(w, "  replace-base <- %s %s\n", d.Type.Name, dim.Sprintf("(%s)", d.Module))
			continue
		}
		for _, m := range reg.MembersFor(target) {
			fmt.Fprintf(w, "  %-9s %s <- %s %s\n",
				memberKind(m), m.TargetName, m.DeclaredName(), dim.Sprintf("(%s)", m.Plug.Module))
		}
	}
}

func memberKind(m *plug.Member) string {
	switch {
	case m.Method != nil:
		return "method"
	case m.Field != nil:
		return "field"
	case m.Prop != nil:
		return "property"
	}
	return "?"
}
