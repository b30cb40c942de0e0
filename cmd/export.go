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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goensight/export"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [case file]",
		Short: "Writes the parts read at one time step as parquet files, with a JSON summary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := processInput(cmd, v, args)
			if err != nil {
				return err
			}
			outDir, _ := cmd.Flags().GetString("outDir")
			compress, _ := cmd.Flags().GetBool("zstd")

			r, out, err := readCase(rp)
			if err != nil {
				return err
			}
			defer r.Close()
			logger := r.DataSet().Logger()

			paths, err := export.WriteCollectionParquet(outDir, out)
			if err != nil {
				return err
			}
			for _, p := range paths {
				logger.Info("wrote %s", p)
			}

			name := "summary.json"
			if compress {
				name += ".zst"
			}
			f, err := os.Create(filepath.Join(outDir, name))
			if err != nil {
				return err
			}
			if err = export.WriteSummary(f, export.Summarize(r), compress); err != nil {
				_ = f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d parts to %s\n", len(paths), outDir)
			return nil
		},
	}
	addSelectionFlags(exportCmd)
	exportCmd.Flags().StringP("outDir", "o", ".", "directory for the parquet files and summary")
	exportCmd.Flags().Bool("zstd", false, "zstd compress the summary")
	return exportCmd
}
