// angzarrctl is a command-line client for talking to an angzarr gateway:
// send commands and run queries without writing a throwaway Go program.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "angzarrctl",
	Short: "Command-line client for an angzarr gateway",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.angzarrctl.yaml)")
	rootCmd.PersistentFlags().String("endpoint", "localhost:8080", "gateway endpoint (host:port or a unix socket path)")
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.SetEnvPrefix("ANGZARRCTL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(commandCmd)
	rootCmd.AddCommand(queryCmd)
}

// initConfig wires viper to $HOME/.angzarrctl.yaml, ANGZARRCTL_* env vars,
// and the --endpoint flag, in that increasing order of precedence.
func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".angzarrctl")
		}
	}
	_ = viper.ReadInConfig()
}

func endpoint() string {
	return viper.GetString("endpoint")
}
