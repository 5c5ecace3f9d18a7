package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration (same keys as .kapreport.yaml)
const defaultConfigYAML = `
folder: .
file: ""
format: table
output: ""
details: false
style: auto
width: 100
server:
  port: "8080"
  max_upload_mb: 10
`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "kapreport [file.csv]",
		Short: "Anlage KAP values from an IBKR activity statement",
		Long: `kapreport reads an Interactive Brokers activity statement (CSV export)
and calculates the values for lines 7, 19, 37, 38 and 41 of the German
Anlage KAP tax form.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("file", args[0])
			}
			handler(reportCmd, []string{})
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	// Add config flag to root command
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.kapreport.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Add config paths in order of priority
		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".kapreport")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("KAPREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := readDefaultConfig(); err != nil {
		fmt.Printf("Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// readDefaultConfig loads the embedded defaults so every key has a value
// even when a config file sets only some of them.
func readDefaultConfig() error {
	viper.SetConfigType("yaml")
	return viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML))
}
