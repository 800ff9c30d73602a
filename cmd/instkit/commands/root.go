package commands

import (
	"strings"

	"github.com/arthur-debert/instkit/internal/version"
	"github.com/arthur-debert/instkit/pkg/config"
	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/rules"
	"github.com/arthur-debert/instkit/pkg/variables"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// app is the state shared by all commands of one invocation
type app struct {
	fs          afero.Fs
	interactive func() bool

	verbosity  int
	configPath string
	cfg        *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{fs: afero.NewOsFs(), interactive: stdinIsTerminal})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "instkit",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			cfg, err := config.Load(config.WithConfigFS(a.fs), config.WithFile(a.configPath))
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", MsgFlagConfig)

	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newInstallCmd(a))
	rootCmd.AddCommand(newEvalCmd(a))
	rootCmd.AddCommand(newConditionsCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// ruleOptions are the flags of commands that evaluate conditions
type ruleOptions struct {
	conditions string
	vars       []string
}

func (o *ruleOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.conditions, "conditions", "", MsgFlagConditions)
	cmd.Flags().StringArrayVar(&o.vars, "var", nil, MsgFlagVar)
}

// variables merges the configured defaults with --var flags
func (o *ruleOptions) variables(cfg *config.Config) (*variables.Variables, error) {
	vars := variables.New(cfg.Rules.Variables)
	for _, kv := range o.vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, MsgErrBadVar, kv)
		}
		vars.Set(strings.TrimSpace(name), value)
	}
	return vars, nil
}

// engine builds a rules engine with the condition document loaded and
// references resolved
func (a *app) engine(o *ruleOptions, extra ...rules.EngineOption) (*rules.Engine, error) {
	vars, err := o.variables(a.cfg)
	if err != nil {
		return nil, err
	}
	opts := append([]rules.EngineOption{rules.WithFS(a.fs), rules.WithVariables(vars)}, extra...)
	e := rules.NewEngine(opts...)

	path := o.conditions
	if path == "" {
		path = a.cfg.Rules.Conditions
	}
	if path != "" {
		f, err := a.fs.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "failed to open conditions %s", path)
		}
		defer func() { _ = f.Close() }()
		if err := e.Analyze(f); err != nil {
			return nil, err
		}
	}
	if err := e.ResolveReferences(); err != nil {
		return nil, err
	}
	return e, nil
}

// RenderError formats a command error for the terminal
func RenderError(err error) string {
	return errorStyle.Render("Error: " + err.Error())
}
