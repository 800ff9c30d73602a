package commands

import (
	"fmt"

	"github.com/arthur-debert/instkit/pkg/rules"
	"github.com/spf13/cobra"
)

func newConditionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conditions",
		Short: MsgConditionsShort,
	}
	cmd.AddCommand(newConditionsDumpCmd(a))
	cmd.AddCommand(newConditionsTypesCmd())
	return cmd
}

func newConditionsTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: MsgConditionsTypesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range rules.Types() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newConditionsDumpCmd(a *app) *cobra.Command {
	var (
		ro     ruleOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: MsgConditionsDumpShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rules.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := a.engine(&ro)
			if err != nil {
				return err
			}
			return e.WriteConditions(cmd.OutOrStdout(), f)
		},
	}

	ro.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(rules.FormatXML), MsgFlagFormat)
	return cmd
}
