package commands

import (
	"sort"

	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/packaging"
	"github.com/arthur-debert/instkit/pkg/paths"
	"github.com/arthur-debert/instkit/pkg/rules"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInstallCmd(a *app) *cobra.Command {
	var (
		ro          ruleOptions
		target      string
		searchPaths []string
		noPrompt    bool
	)

	cmd := &cobra.Command{
		Use:     "install <volume> [packs...]",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.install")
			base, requested := args[0], args[1:]

			m, err := packaging.ReadManifest(a.fs, paths.ManifestPath(base))
			if err != nil {
				return err
			}

			e, err := a.engine(&ro, rules.WithPacks(m.RulesPacks()))
			if err != nil {
				return err
			}
			sel, err := packaging.SelectPacks(e, m.Packs, requested)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range sel.Packs {
				printf(out, successStyle, MsgPackSelected, p.ID)
			}
			skipped := make([]string, 0, len(sel.Skipped))
			for id := range sel.Skipped {
				skipped = append(skipped, id)
			}
			sort.Strings(skipped)
			for _, id := range skipped {
				printf(out, mutedStyle, MsgPackSkipped, id, sel.Skipped[id])
			}
			if len(sel.Packs) == 0 {
				printf(out, mutedStyle, MsgNothingSelected)
				return nil
			}

			if target == "" {
				target = a.cfg.Install.TargetDir
			}
			dirs := append(append([]string{}, a.cfg.Volume.SearchPaths...), searchPaths...)
			locator := newLocator(dirs, !noPrompt && a.interactive(), volume.NewSearchLocator(a.fs, dirs...), ptermPrompt)

			logger.Info().
				Str("volume", base).
				Strs("packs", sel.IDs()).
				Str("target", target).
				Msg("Starting install")

			x := packaging.NewExtractor(base, m,
				packaging.WithExtractorFS(a.fs),
				packaging.WithExtractorLocator(locator),
			)
			res, err := x.Extract(target, sel.IDs())
			if err != nil {
				return err
			}

			printf(out, titleStyle, MsgInstallDone, res.Files, humanize.Bytes(uint64(res.Bytes)), target)
			return nil
		},
	}

	ro.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", MsgFlagTarget)
	cmd.Flags().StringArrayVar(&searchPaths, "search-path", nil, MsgFlagSearchPath)
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, MsgFlagNoPrompt)
	return cmd
}
