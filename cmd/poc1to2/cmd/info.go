package cmd

import (
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spacemeshos/poc1to2/conversion"
	"github.com/spacemeshos/poc1to2/plot"
	"github.com/spacemeshos/poc1to2/shared"
)

func newInfoCmd(v *viper.Viper, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <plot file>",
		Short: "Validate a PoC1 plot and print its layout without converting it",
		Long: `info checks that the plot file name and size describe an optimized PoC1 plot
and prints the metadata the conversion would use. The file is not modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, flags.configFile, args[0])
			if err != nil {
				return err
			}

			d, err := plot.NewDescriptor(cfg.PlotFile, cfg.OutDir)
			if err != nil {
				return err
			}
			exists, err := conversion.Exists(d)
			if err != nil {
				return err
			}

			mode := "copy"
			if d.InPlace {
				mode = "in-place"
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"field", "value"})
			table.SetBorder(true)
			table.SetAutoWrapText(false)
			table.AppendBulk([][]string{
				{"path", d.Path},
				{"id", strconv.FormatUint(d.ID, 10)},
				{"start nonce", strconv.FormatUint(d.StartNonce, 10)},
				{"nonces", strconv.FormatInt(d.Nonces, 10)},
				{"size", bytefmt.ByteSize(d.Size)},
				{"scoop block size", bytefmt.ByteSize(uint64(d.BlockSize()))},
				{"scoop pairs", strconv.Itoa(shared.NumScoopPairs)},
				{"mode", mode},
				{"output", d.OutputPath()},
				{"output exists", strconv.FormatBool(exists)},
			})
			table.Render()
			return nil
		},
	}
}
