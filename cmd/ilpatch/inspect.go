package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ilpatch/internal/il"
	"ilpatch/internal/ilbin"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <module.ilm> [type::method]",
	Short: "Disassemble an IL module",
	Long: `Inspect prints a textual disassembly of an IL module file, or of a
single method when a Type::Method selector is given. Useful for checking
what a patch run actually produced.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	mod, err := ilbin.ReadFile(args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Fprint(cmd.OutOrStdout(), il.Disasm(mod))
		return nil
	}

	sel, err := parseMemberSelector(args[1])
	if err != nil {
		return err
	}
	t := mod.FindType(sel.Type)
	if t == nil {
		return fmt.Errorf("type %s not found in %s", sel.Type, mod.Name)
	}
	method := t.FindMethod(sel.Name)
	if method == nil {
		return fmt.Errorf("method %s not found", sel)
	}
	fmt.Fprint(cmd.OutOrStdout(), il.DisasmMethod(method))
	return nil
}

func parseMemberSelector(s string) (il.MemberRef, error) {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && s[i+1] == ':' {
			if i == 0 || i+2 == len(s) {
				break
			}
			return il.MemberRef{Type: il.QName(s[:i]), Name: s[i+2:]}, nil
		}
	}
	return il.MemberRef{}, fmt.Errorf("invalid selector %q (expected Type::Method)", s)
}
