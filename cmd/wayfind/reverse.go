package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

func reverseCmd() *cobra.Command {
	var (
		kwargs  []string
		current string
	)

	cmd := &cobra.Command{
		Use:   "reverse <name> [arg...]",
		Short: "Build a path from a route name",
		Long: `Reverse looks up the named route and builds its path from the given
arguments. Positional arguments follow the name; named arguments are
given with --kwarg key=value. Values are passed to the converters as
strings.

The name may be qualified with namespaces, "admin:polls:detail".
Use --current to resolve relative to an instance namespace path.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := loadTable()
			if err != nil {
				return err
			}

			opts := []dispatch.ReverseOption{}
			if len(args) > 1 {
				pos := make([]any, 0, len(args)-1)
				for _, a := range args[1:] {
					pos = append(pos, a)
				}
				opts = append(opts, dispatch.Args(pos...))
			}
			if len(kwargs) > 0 {
				kw := make(map[string]any, len(kwargs))
				for _, pair := range kwargs {
					k, v, ok := strings.Cut(pair, "=")
					if !ok {
						return fmt.Errorf("invalid --kwarg %q, want key=value", pair)
					}
					kw[k] = v
				}
				opts = append(opts, dispatch.Kwargs(kw))
			}
			if current != "" {
				opts = append(opts, dispatch.Current(strings.Split(current, ":")...))
			}

			path, err := table.Reverse(args[0], opts...)
			if err != nil {
				var nr *dispatch.NoReverseError
				if errors.As(err, &nr) {
					warn("%s", nr.Error())
					for _, pat := range nr.Tried {
						info("candidate %s", pat)
					}
					return fmt.Errorf("no reverse")
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&kwargs, "kwarg", nil, "Named argument, key=value (repeatable)")
	cmd.Flags().StringVar(&current, "current", "", "Current instance namespace path, colon-separated")

	return cmd
}
