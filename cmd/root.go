package cmd

import (
	"fmt"
	"os"
	"path"

	"safeprice/config"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var (
	cfgFile     string
	cfg         config.Config
	debugMode   bool
	memoryMode  bool
	initialized bool
)

var rootCmd = cobra.Command{
	Use:   "safeprice",
	Short: "resilient collateral valuation",
}

func init() {
	cobra.OnInitialize(initConfig, initLogging, initDone)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file. default is ~/.safeprice.yaml")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable or disable debug model")
	rootCmd.PersistentFlags().BoolVar(&memoryMode, "memory", false, "keep every store in memory, ignore the db config")
	rootCmd.PersistentFlags().String("caller", "", "caller identity of privileged commands")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initConfig() {
	if initialized {
		return
	}

	if cfgFile == "" {
		dir, err := homedir.Dir()
		if err != nil {
			panic(err)
		}

		filename := path.Join(dir, ".safeprice.yaml")
		info, err := os.Stat(filename)
		if !os.IsNotExist(err) && !info.IsDir() {
			cfgFile = filename
		}
	}

	if cfgFile != "" {
		logrus.Debugln("use config file", cfgFile)
	}

	if err := config.Load(cfgFile, &cfg); err != nil {
		panic(err)
	}

	if memoryMode {
		cfg.App.Memory = true
	}

	if cfg.App.Memory {
		logrus.Warnln("memory mode, nothing survives a restart")
	}
}

func initLogging() {
	if initialized {
		return
	}

	if debugMode {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)

	structs.DefaultTagName = "json"
}

func initDone() {
	initialized = true
}

func callerFlag(cmd *cobra.Command) string {
	caller, _ := cmd.Flags().GetString("caller")
	if caller == "" {
		caller = cfg.Monitor.UpgradeAdmin
	}

	return caller
}
