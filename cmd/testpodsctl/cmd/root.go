package cmd

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"

	"github.com/testpods-go/testpods/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "testpodsctl [command] [options]",
	Short: "Maintenance CLI for testpods-go",
	Long: `
testpodsctl - maintenance CLI for testpods-go

  # show this help
  testpodsctl -h

  # show version information
  testpodsctl --version

  # check that the configured cluster is reachable
  testpodsctl doctor

  # delete leftover testpods-* namespaces older than 1 hour
  testpodsctl cleanup --namespace-prefix testpods- --older-than 1h`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("version") {
			fmt.Println(version.Get())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().IntP("log-level", "", 2, "Set the log level (0 to 9)")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and quit")
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	_ = viper.BindPFlags(rootCmd.Flags())

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(cleanupCmd)
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("testpodsctl: %v", err)
		os.Exit(1)
	}
}

func initLogging() {
	logLevel := viper.GetInt("log-level")
	if logLevel < 0 {
		logLevel = 2
	}
	config := textlogger.NewConfig(
		textlogger.Output(os.Stderr),
		textlogger.Verbosity(logLevel),
	)
	klog.SetLoggerWithOptions(textlogger.NewLogger(config))

	flagSet := flag.NewFlagSet("testpodsctl", flag.ContinueOnError)
	klog.InitFlags(flagSet)
	if err := flagSet.Parse([]string{"--v", strconv.Itoa(logLevel)}); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing log level: %v\n", err)
	}
}
