package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func newRootCmd(logFlags *flag.FlagSet) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ecomotif",
		Short: "ecomotif: triangular motifs of species interaction networks",
		Long: `ecomotif reads a weighted edge list ("source target weight" per line) and
enumerates every closed triangle of the interaction graph.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ecomotif.yaml or $HOME/ecomotif.yaml)")
	rootCmd.PersistentFlags().AddGoFlagSet(logFlags)

	rootCmd.AddCommand(
		newFindCmd(),
		newRunCmd(),
	)
	return rootCmd
}

// initConfig reads in the config file if one is given or found.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("ecomotif")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "reading config")
	}

	klog.V(1).Infof("using config file %s", viper.ConfigFileUsed())
	return nil
}
