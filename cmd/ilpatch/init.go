package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a patch project",
	Long: `Initialize a patch project by creating a starter patch.toml manifest.
If [path] is omitted, initializes the current directory. If a non-existing
path is provided, the directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const starterManifest = `# ilpatch project manifest.

[patch]
# The module whose extern members get replaced.
target = "target.ilm"
# Where the patched module is written. Defaults to <target>.plugged.ilm.
# output = "target.plugged.ilm"
# Replacement modules, scanned in listed order. On duplicate substitutions
# the first registration wins.
plugs = ["plugs.ilm"]

[resolve]
# Additional modules for late-bound target-name resolution. The target
# module itself is always searched first.
modules = []
`

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if filepath.IsAbs(arg) {
			target = arg
		} else {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, "patch.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(manifestPath, []byte(starterManifest), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", manifestPath)
	return nil
}
