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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goensight/export"
)

func newInfoCmd(v *viper.Viper) *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info [case file]",
		Short: "Prints the parts, variables and time steps of a case as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := processInput(cmd, v, args)
			if err != nil {
				return err
			}
			r, err := openCase(rp)
			if err != nil {
				return err
			}
			defer r.Close()
			return export.WriteSummary(cmd.OutOrStdout(), export.Summarize(r), false)
		},
	}
	infoCmd.Flags().StringP("inputFile", "I", "", "YAML reader parameters")
	return infoCmd
}
