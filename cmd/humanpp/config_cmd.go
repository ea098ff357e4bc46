package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phyten/humanpp/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the active configuration file and how it was found",
			Args:  exactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				store, err := a.store()
				if err != nil {
					return err
				}
				path, source := store.Path()
				if path == "" {
					fmt.Fprintf(a.stdout, "(none; set would create %s)\n", config.DefaultPath(a.dir))
					return nil
				}
				fmt.Fprintf(a.stdout, "%s\t%s\n", path, source)
				return nil
			},
		},
		newConfigShowCmd(a),
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one resolved setting",
			Args:  exactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				store, err := a.store()
				if err != nil {
					return err
				}
				v, err := store.Settings().Lookup(args[0])
				if err != nil {
					return usageError{err: err}
				}
				return printValue(a, v)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Persist one setting to the active file (created if missing)",
			Args:  exactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				store, err := a.store()
				if err != nil {
					return err
				}
				if _, err := store.Set(args[0], args[1]); err != nil {
					return err
				}
				path, _ := store.Path()
				fmt.Fprintf(a.stderr, "updated %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List the keys accepted by get and set",
			Args:  exactArgs(0),
			RunE: func(*cobra.Command, []string) error {
				for _, k := range config.Keys() {
					fmt.Fprintln(a.stdout, k)
				}
				return nil
			},
		},
	)
	return cmd
}

var showFormats = []string{"yaml", "json"}

func newConfigShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every resolved setting",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			if !slices.Contains(showFormats, format) {
				return usagef("invalid --format: %s (yaml|json)", format)
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			st := store.Settings()
			if format == "json" {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(st); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "yaml|json")
	return cmd
}

// printValue prints scalars bare and everything else as YAML.
func printValue(a *app, v any) error {
	switch v.(type) {
	case nil:
		fmt.Fprintln(a.stdout, "")
		return nil
	case string, bool, int, float64:
		fmt.Fprintln(a.stdout, v)
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}
