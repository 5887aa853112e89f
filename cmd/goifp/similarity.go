/*
 * similarity.go, part of goifp.
 *
 * Copyright 2024 The goifp authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/ifpio"
	"github.com/rmera/goifp/similarity"
	"github.com/spf13/cobra"
)

type similarityOptions struct {
	Table     string
	Reference string
	Metric    string
	Occupancy float64
}

var metricFuncs = map[string]similarity.Metric{
	"tanimoto": similarity.Tanimoto,
	"dice":     similarity.Dice,
}

func newSimilarityCommand() *cobra.Command {
	opts := &similarityOptions{}
	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Compare the frames of a fingerprint table",
		Long: "similarity prints the similarity between every pair of frames of a table or,\n" +
			"with --reference, between the frames of the table and those of the reference.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimilarity(cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Table, "table", "", "fingerprint table")
	f.StringVar(&opts.Reference, "reference", "", "optional table to compare against")
	f.StringVar(&opts.Metric, "metric", "tanimoto", "tanimoto or dice")
	f.Float64Var(&opts.Occupancy, "occupancy", 0, "if above 0, also list the interactions present in at least this fraction of frames")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func runSimilarity(out io.Writer, opts *similarityOptions) error {
	metric, ok := metricFuncs[strings.ToLower(opts.Metric)]
	if !ok {
		return errors.Newf("unknown metric %q", opts.Metric)
	}
	M, err := ifpio.ReadTableFile(opts.Table)
	if err != nil {
		return err
	}
	ref := M
	if opts.Reference != "" {
		if ref, err = ifpio.ReadTableFile(opts.Reference); err != nil {
			return err
		}
	}
	var at func(i, j int) float64
	if opts.Reference == "" {
		at = similarity.Pairwise(M, metric).At
	} else {
		at = similarity.CrossSimilarity(M, ref, metric).At
	}
	printMatrix(out, M.Frames(), ref.Frames(), at)
	if opts.Occupancy > 0 {
		printOccupancy(out, M, opts.Occupancy)
	}
	return nil
}

func printMatrix(out io.Writer, rows, cols []int, at func(i, j int) float64) {
	fmt.Fprint(out, "Frame")
	for _, c := range cols {
		fmt.Fprintf(out, "\t%d", c)
	}
	fmt.Fprintln(out)
	for i, r := range rows {
		fmt.Fprintf(out, "%d", r)
		for j := range cols {
			fmt.Fprintf(out, "\t%.3f", at(i, j))
		}
		fmt.Fprintln(out)
	}
}

func printOccupancy(out io.Writer, M *fingerprint.Matrix, min float64) {
	cols, occ := similarity.Frequent(M, min)
	fmt.Fprintf(out, "\nInteractions in at least %.0f%% of the frames:\n", 100*min)
	for i, c := range cols {
		fmt.Fprintf(out, "%s\t%.3f\n", c, occ[i])
	}
}
