package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <path>",
		Short: "Resolve a path against the route table",
		Long: `Match resolves the given path and prints the matched route, its
handler and the extracted arguments. When nothing matches, every
pattern chain that was tried is listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := loadTable()
			if err != nil {
				return err
			}

			m, err := table.Resolve(args[0])
			if err != nil {
				var nm *dispatch.NoMatchError
				if errors.As(err, &nm) {
					warn("no route matched %q", args[0])
					for _, pat := range nm.Tried {
						info("tried %s", pat)
					}
					return fmt.Errorf("no match")
				}
				return err
			}

			success("matched %s", m.Pattern)
			if vn := m.ViewName(); vn != "" {
				info("name:    %s", vn)
			}
			switch h := m.Handler.(type) {
			case dispatch.Ref:
				info("handler: %s", string(h))
			default:
				info("handler: %T", h)
			}
			for i, a := range m.Args {
				info("arg[%d]:  %v", i, a)
			}
			for _, k := range sortedKeys(m.Kwargs) {
				info("%s = %v", k, m.Kwargs[k])
			}
			return nil
		},
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
