package cmd

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spacemeshos/poc1to2/config"
	"github.com/spacemeshos/poc1to2/conversion"
	"github.com/spacemeshos/poc1to2/plot"
)

var (
	Version string
	Commit  string
)

type rootFlags struct {
	configFile  string
	printConfig bool
}

// NewRootCmd builds the command tree. Every call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "poc1to2 <plot file>",
		Short: "Convert PoC1 plots to PoC2 plots",
		Long: `poc1to2 converts an optimized PoC1 plot file into the PoC2 layout.

By default the plot is converted in place and renamed to {id}_{startNonce}_{nonces}
once done. An interrupted in-place conversion leaves a plot that is neither
PoC1 nor PoC2. Use --out to write the converted plot into another directory
instead, at the expense of temporary additional disk space.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, flags.configFile, args[0])
			if err != nil {
				return err
			}

			if flags.printConfig {
				spew.Fdump(cmd.OutOrStdout(), cfg)
				return nil
			}
			return runConvert(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("out", "o", "", `directory to write the converted plot file to. This switches
to copy mode (in-place is the default) and speeds up the conversion
at the expense of temporary additional disk space`)

	rootCmd.Flags().BoolP("quiet", "q", false, `quiet operation, no output at all except failures.
You can send the process into background and forget about it`)
	rootCmd.Flags().Bool("disable-space-check", false, "do not check for free space in the output directory before copying")
	rootCmd.Flags().BoolVar(&flags.printConfig, "print-config", false, "print the effective config and exit")

	bindFlags(v, rootCmd, "log-level", "out", "quiet", "disable-space-check")

	rootCmd.AddCommand(newInfoCmd(v, flags))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, names ...string) {
	for _, name := range names {
		var f *pflag.Flag
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			if f = fs.Lookup(name); f != nil {
				break
			}
		}
		if err := v.BindPFlag(name, f); err != nil {
			panic(fmt.Sprintf("bind flag %v: %v", name, err))
		}
	}
}

func loadConfig(v *viper.Viper, configFile, plotFile string) (config.Config, error) {
	if configFile != "" {
		if err := config.ReadFile(v, configFile); err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	cfg.PlotFile = plotFile

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, cfg config.Config) error {
	logger := zap.NewNop()
	if !cfg.Quiet {
		lvl, err := cfg.Level()
		if err != nil {
			return err
		}
		logger = newLogger(cmd.OutOrStdout(), lvl)
	}
	defer logger.Sync()

	d, err := plot.NewDescriptor(cfg.PlotFile, cfg.OutDir)
	if err != nil {
		return err
	}

	exists, err := conversion.Exists(d)
	if err != nil {
		return err
	}
	if exists {
		logger.Warn("converted plot already exists and will be overwritten", zap.String("path", d.OutputPath()))
	}

	opts := []conversion.OptionFunc{
		conversion.WithLogger(logger),
		conversion.WithDiskSpaceCheck(!cfg.DisableSpaceCheck),
	}
	if !cfg.Quiet {
		opts = append(opts, conversion.WithProgress(cmd.OutOrStdout()))
	}

	c, err := conversion.NewConverter(d, opts...)
	if err != nil {
		return err
	}
	return c.Convert()
}

// Execute runs the root command and exits with a non-zero status on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "poc1to2: %v\n", err)
		os.Exit(1)
	}
}
