package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ilpatch/internal/diag"
	"ilpatch/internal/diagfmt"
	"ilpatch/internal/driver"
	"ilpatch/internal/project"
)

// loadManifestArg resolves the optional positional argument of the patch,
// scan and validate commands: a path to a patch.toml, a directory holding
// one, or nothing (upward search from the working directory).
func loadManifestArg(args []string) (project.Manifest, error) {
	var manifestPath string
	if len(args) > 0 && args[0] != "." {
		arg := args[0]
		st, err := os.Stat(arg)
		if err != nil {
			return project.Manifest{}, err
		}
		if st.IsDir() {
			path, ok, err := project.FindPatchToml(arg)
			if err != nil {
				return project.Manifest{}, err
			}
			if !ok {
				return project.Manifest{}, fmt.Errorf("no patch.toml found in %s", arg)
			}
			manifestPath = path
		} else {
			manifestPath = arg
		}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return project.Manifest{}, err
		}
		path, ok, err := project.FindPatchToml(wd)
		if err != nil {
			return project.Manifest{}, err
		}
		if !ok {
			return project.Manifest{}, fmt.Errorf("no patch.toml found in %s or any parent directory", wd)
		}
		manifestPath = path
	}
	return project.LoadManifest(manifestPath)
}

// readColorMode resolves the persistent --color flag against the terminal.
func readColorMode(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(mode) {
	case "auto":
		return isTerminal(os.Stdout), nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
}

// readCommonOptions assembles driver options from the persistent flags plus
// the per-command --jobs flag when it exists.
func readCommonOptions(cmd *cobra.Command) (driver.Options, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}
	verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return driver.Options{}, err
	}
	opts := driver.Options{MaxDiagnostics: maxDiagnostics, Verbose: verbose}
	if cmd.Flags().Lookup("jobs") != nil {
		if opts.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return driver.Options{}, err
		}
	}
	return opts, nil
}

// reportFaults renders the bag to stdout in the requested format and returns
// an error when the run accumulated fatal faults, so cobra exits non-zero.
func reportFaults(cmd *cobra.Command, bag *diag.Bag, format string) error {
	useColor, err := readColorMode(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := diagfmt.JSON(out, bag); err != nil {
			return err
		}
	default:
		diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{Color: useColor, ShowNotes: !quiet})
		if !quiet && bag.Len() > 0 {
			diagfmt.Summary(out, bag, diagfmt.PrettyOpts{Color: useColor})
		}
	}

	if bag.HasFatal() {
		return fmt.Errorf("%d fatal fault(s)", countErrors(bag))
	}
	return nil
}

func countErrors(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			n++
		}
	}
	return n
}

// maybePrintTimings honors the persistent --timings flag.
func maybePrintTimings(cmd *cobra.Command, res *driver.Result) error {
	show, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if !show || res == nil {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), res.Timing.Summary())
	return nil
}
