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
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goensight/InputParameters"
	"github.com/notargets/goensight/ensight"
	"github.com/notargets/goensight/mesh"
)

func newReadCmd(v *viper.Viper) *cobra.Command {
	readCmd := &cobra.Command{
		Use:   "read [case file]",
		Short: "Reads one time step and lists the parts and arrays found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rp, err := processInput(cmd, v, args)
			if err != nil {
				return err
			}
			r, out, err := readCase(rp)
			if err != nil {
				return err
			}
			defer r.Close()
			printCollection(cmd.OutOrStdout(), out)
			printDiagnostics(cmd.OutOrStdout(), r)
			return nil
		},
	}
	addSelectionFlags(readCmd)
	return readCmd
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("inputFile", "I", "", "YAML reader parameters, flags override its values")
	cmd.Flags().Float64P("time", "t", 0, "time value to read, defaults to the first step")
	cmd.Flags().StringSliceP("parts", "p", nil, "parts to read, all by default")
	cmd.Flags().StringSlice("pointArrays", nil, "point arrays to read, all by default")
	cmd.Flags().StringSlice("cellArrays", nil, "cell arrays to read, all by default")
	cmd.Flags().StringSlice("fieldArrays", nil, "field arrays to read, all by default")
	cmd.Flags().Bool("structureOnly", false, "read geometry only")
}

func processInput(cmd *cobra.Command, v *viper.Viper, args []string) (*InputParameters.ReaderParameters, error) {
	rp := &InputParameters.ReaderParameters{}
	if fileName, _ := cmd.Flags().GetString("inputFile"); fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return nil, err
		}
		if err = rp.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
	}
	if len(args) == 1 {
		rp.CaseFile = args[0]
	}
	if rp.CaseFile == "" {
		exampleFile := `
########################################
CaseFile: flow.case
TimeValue: 0.5
Parts: [Wing]
########################################
`
		return nil, fmt.Errorf("must supply a case file argument or an input file (-I) like:%s", exampleFile)
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		tv, _ := flags.GetFloat64("time")
		rp.TimeValue = &tv
	}
	for name, dst := range map[string]*[]string{
		"parts":       &rp.Parts,
		"pointArrays": &rp.PointArrays,
		"cellArrays":  &rp.CellArrays,
		"fieldArrays": &rp.FieldArrays,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetStringSlice(name)
		}
	}
	if flags.Changed("structureOnly") {
		rp.StructureOnly, _ = flags.GetBool("structureOnly")
	}
	if rp.LogLevel == "" || flags.Changed("logLevel") {
		rp.LogLevel = v.GetString("logLevel")
	}
	if rp.LogFile == "" || flags.Changed("logFile") {
		rp.LogFile = v.GetString("logFile")
	}
	rp.LogJSON = rp.LogJSON || v.GetBool("logJSON")
	return rp, nil
}

// openCase opens the case file of rp and applies its selections
func openCase(rp *InputParameters.ReaderParameters) (*ensight.Reader, error) {
	logger := rp.Logger()
	r := ensight.NewReader(logger)
	if err := r.Open(rp.CaseFile); err != nil {
		_ = r.Close()
		return nil, err
	}
	if err := rp.Apply(r); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func readCase(rp *InputParameters.ReaderParameters) (*ensight.Reader, *mesh.Collection, error) {
	r, err := openCase(rp)
	if err != nil {
		return nil, nil, err
	}
	t := rp.Time(r)
	r.DataSet().Logger().Info("reading %s at time %g", rp.CaseFile, t)
	out, err := r.Read(t)
	if err != nil {
		_ = r.Close()
		return nil, nil, err
	}
	return r, out, nil
}

func printCollection(w io.Writer, c *mesh.Collection) {
	for i := 0; i < c.NumberOfPartitions(); i++ {
		part := c.Partition(i)
		if part == nil {
			fmt.Fprintf(w, "%3d %-24s not read\n", i, c.Name(i))
			continue
		}
		fmt.Fprintf(w, "%3d %-24s %-16s points %-8d cells %d\n",
			i, c.Name(i), part.Kind(), part.NumberOfPoints(), part.NumberOfCells())
		printArrays(w, "point", part.PointData())
		printArrays(w, "cell", part.CellData())
	}
	printArrays(w, "field", c.FieldData)
}

func printArrays(w io.Writer, where string, at *mesh.Attributes) {
	names := make([]string, 0, at.NumberOfArrays())
	comps := make(map[string]int)
	for _, a := range at.Arrays() {
		names = append(names, a.ArrayName())
		comps[a.ArrayName()] = a.Components()
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "      %-6s %s[%d]\n", where, name, comps[name])
	}
}

func printDiagnostics(w io.Writer, r *ensight.Reader) {
	for _, d := range r.DataSet().Diagnostics().Entries() {
		fmt.Fprintf(w, "%s\n", d)
	}
}
