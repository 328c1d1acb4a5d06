package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change persisted settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := app.db.GetAllSettings()
				if err != nil {
					return err
				}
				keys := make([]string, 0, len(settings))
				for k := range settings {
					keys = append(keys, k)
				}
				slices.Sort(keys)

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tVALUE")
				for _, k := range keys {
					fmt.Fprintf(w, "%s\t%s\n", k, settings[k])
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.db.SetSetting(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "unset KEY",
			Short: "Remove a setting so its default applies",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.db.DeleteSetting(args[0])
			},
		},
	)
	return cmd
}
