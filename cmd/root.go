/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the goensight command tree. Settings come from flags,
// then GOENSIGHT_ environment variables, then $HOME/.goensight.yaml.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile  string
		prof     string
		profiler interface{ Stop() }
		v        = viper.New()
	)
	rootCmd := &cobra.Command{
		Use:   "goensight",
		Short: "Reads EnSight Gold datasets",
		Long: `
Reads EnSight Gold case files with their geometry, variable, measured and
rigid body files, and reports or exports the parts found at a time step,

goensight read flow.case --time 0.5`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			switch prof {
			case "":
			case "cpu":
				profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
			case "mem":
				profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
			default:
				return fmt.Errorf("invalid profile %q, use cpu or mem", prof)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if profiler != nil {
				profiler.Stop()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.goensight.yaml)")
	rootCmd.PersistentFlags().StringVar(&prof, "profile", "", "write a cpu or mem profile to the current directory")
	rootCmd.PersistentFlags().String("logLevel", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("logFile", "", "also log to this file, rotated")
	rootCmd.PersistentFlags().Bool("logJSON", false, "log JSON lines")
	for _, name := range []string{"logLevel", "logFile", "logJSON"} {
		_ = v.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(newInfoCmd(v), newReadCmd(v), newExportCmd(v))
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			return err
		}
		// Search config in home directory with name ".goensight" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(".goensight")
	}
	v.SetEnvPrefix("goensight")
	v.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || cfgFile == "" {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", filepath.Clean(cfgFile), err)
	}
	return nil
}
