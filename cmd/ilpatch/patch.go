package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ilpatch/internal/driver"
	"ilpatch/internal/pipeline"
	"ilpatch/internal/project"
	"ilpatch/internal/ui"
)

var patchCmd = &cobra.Command{
	Use:   "patch [flags] [path]",
	Short: "Apply plug substitutions to a target module",
	Long: `Patch reads the target module and every replacement module named by
patch.toml, scans plug markers, transplants the replacement bodies into the
target and writes the patched module. Faults are accumulated and reported;
the target on disk is never modified, only the output path is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().Int("jobs", 0, "max parallel workers for module loading (0=auto)")
	patchCmd.Flags().String("format", "pretty", "fault output format (pretty|json)")
	patchCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	patchCmd.Flags().Bool("dry-run", false, "patch in memory without writing the output module")
}

func runPatch(cmd *cobra.Command, args []string) error {
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
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	opts, err := readCommonOptions(cmd)
	if err != nil {
		return err
	}
	opts.SkipWrite = dryRun

	var res *driver.Result
	if useProgressUI(uiValue, format) {
		res, err = runWithProgress(cmd, manifest, opts)
	} else {
		res, err = driver.Run(cmd.Context(), manifest, opts)
	}
	if err != nil {
		return err
	}

	if err := maybePrintTimings(cmd, res); err != nil {
		return err
	}
	return reportFaults(cmd, res.Bag, format)
}

// useProgressUI decides whether to run the Bubble Tea progress display.
// JSON output keeps stdout machine-readable, so the UI stays off.
func useProgressUI(mode, format string) bool {
	if format == "json" {
		return false
	}
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func runWithProgress(cmd *cobra.Command, manifest project.Manifest, opts driver.Options) (*driver.Result, error) {
	events := make(chan pipeline.Event, 64)
	opts.Sink = pipeline.ChannelSink{Ch: events}

	modules := make([]string, 0, len(manifest.Patch.Plugs)+1)
	modules = append(modules, filepath.Base(manifest.Patch.Target))
	for _, p := range manifest.Patch.Plugs {
		modules = append(modules, filepath.Base(p))
	}

	title := fmt.Sprintf("patching %s", filepath.Base(manifest.Patch.Target))
	program := tea.NewProgram(ui.NewProgressModel(title, modules, events))

	type runOutcome struct {
		res *driver.Result
		err error
	}
	done := make(chan runOutcome, 1)
	go func() {
		res, err := driver.Run(cmd.Context(), manifest, opts)
		close(events)
		done <- runOutcome{res, err}
	}()

	if _, err := program.Run(); err != nil {
		// The run itself may still succeed; drain it before failing.
		outcome := <-done
		if outcome.err != nil {
			return nil, outcome.err
		}
		return nil, fmt.Errorf("progress display failed: %w", err)
	}
	outcome := <-done
	return outcome.res, outcome.err
}
