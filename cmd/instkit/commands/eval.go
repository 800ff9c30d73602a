package commands

import (
	"fmt"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/spf13/cobra"
)

func newEvalCmd(a *app) *cobra.Command {
	var ro ruleOptions

	cmd := &cobra.Command{
		Use:   "eval <condition|expression>...",
		Short: MsgEvalShort,
		Long:  MsgEvalLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.eval")

			e, err := a.engine(&ro)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var failed []string
			for _, expr := range args {
				c, err := e.ParseExpression(expr)
				if err != nil {
					logger.Warn().Err(err).Str("expression", expr).Msg("Cannot evaluate")
					printf(out, errorStyle, MsgEvalResult, expr, err.Error())
					failed = append(failed, expr)
					continue
				}
				fmt.Fprintf(out, MsgEvalResult+"\n", titleStyle.Render(expr), boolText(e.IsConditionTrue(c)))
			}
			if len(failed) > 0 {
				return errors.Newf(errors.ErrExpressionSyntax, "%d expression(s) could not be evaluated", len(failed)).
					WithDetail("expressions", failed)
			}
			return nil
		},
	}

	ro.register(cmd)
	return cmd
}
