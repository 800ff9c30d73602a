package commands

import (
	"github.com/arthur-debert/instkit/pkg/config"
	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/packaging"
	"github.com/arthur-debert/instkit/pkg/volume"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		output  string
		maxSize string
		reserve string
	)

	cmd := &cobra.Command{
		Use:     "build <packs.yaml>",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.build")

			vc := a.cfg.Volume
			if maxSize != "" {
				size, err := config.ParseByteSize(maxSize)
				if err != nil {
					return err
				}
				vc.MaxSize = size
			}
			if reserve != "" {
				size, err := config.ParseByteSize(reserve)
				if err != nil {
					return err
				}
				vc.FirstVolumeReserve = size
			}
			if output == "" {
				return errors.New(errors.ErrInvalidInput, "--output is required")
			}

			packs, err := packaging.LoadPacks(a.fs, args[0])
			if err != nil {
				return err
			}
			logger.Info().
				Str("definitions", args[0]).
				Int("packs", len(packs)).
				Str("output", output).
				Msg("Starting build")

			b := packaging.NewBuilder(output,
				packaging.WithBuilderFS(a.fs),
				packaging.WithVolumeOptions(
					volume.WithMaxVolumeSize(vc.MaxSize.Int64()),
					volume.WithFirstVolumeReserve(vc.FirstVolumeReserve.Int64()),
					volume.WithCompressionLevel(vc.CompressionLevel),
				),
			)
			m, err := b.Build(packs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printf(out, titleStyle, MsgBuildDone, len(m.Packs), m.Volumes)
			printf(out, mutedStyle, MsgBuildSize, humanize.Bytes(uint64(m.Size)), b.ManifestPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().StringVar(&maxSize, "max-size", "", MsgFlagMaxSize)
	cmd.Flags().StringVar(&reserve, "reserve", "", MsgFlagReserve)
	return cmd
}
