/*
 * dock.go, part of goifp.
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
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/chemgraph"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/internal/logging"
	v3 "github.com/rmera/goifp/v3"
	"github.com/spf13/cobra"
)

type dockOptions struct {
	Protein string
	Poses   string
	Target  string
	Out     string
	Hits    string
}

func newDockCommand() *cobra.Command {
	opts := &dockOptions{}
	cmd := &cobra.Command{
		Use:   "dock",
		Short: "Fingerprint docking poses against a protein",
		Long: "dock reads a protein PDB file and an SDF or MOL2 file with docking poses, and\n" +
			"writes a fingerprint table with one row per pose. Poses read from MOL2 files keep\n" +
			"their substructures as separate ligand residues.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDock(cmd.Context(), getAppContext(cmd), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Protein, "protein", "", "protein PDB file")
	f.StringVar(&opts.Poses, "poses", "", "SDF or MOL2 (.mol2) file with the poses")
	f.StringVar(&opts.Target, "target", defaultTargetSel, "target atom selection, in the protein")
	f.StringVarP(&opts.Out, "out", "o", "ifp.tsv", "fingerprint table; names ending in .zst are compressed")
	f.StringVar(&opts.Hits, "hits", "", "if given, JSON file for the detailed hits")
	_ = cmd.MarkFlagRequired("protein")
	_ = cmd.MarkFlagRequired("poses")
	return cmd
}

// readPoses reads the poses in name, as MOL2 if the name ends in .mol2 and as SDF otherwise.
func readPoses(name string) ([]*chem.Molecule, error) {
	if strings.HasSuffix(strings.ToLower(name), ".mol2") {
		return chem.Mol2FileRead(name)
	}
	return chem.SDFFileRead(name)
}

// poseFrames returns one frame per pose, each with the protein and the pose merged in
// a single structure, protein first.
func poseFrames(protein *chem.Molecule, poses []*chem.Molecule) ([]fingerprint.Frame, error) {
	frames := make([]fingerprint.Frame, 0, len(poses))
	for i, pose := range poses {
		if len(pose.Coords) == 0 {
			return nil, errors.Newf("pose %d has no coordinates", i)
		}
		if err := chemgraph.Perceive(pose.Topology, pose.Coords[0]); err != nil {
			return nil, errors.Wrapf(err, "pose %d", i)
		}
		top := chem.MergeTopologies(fmt.Sprintf("%s+%s", protein.Name(), pose.Name()), protein.Topology, pose.Topology)
		frames = append(frames, fingerprint.Frame{
			Index:    i,
			Snapshot: fingerprint.Snapshot{Structure: top, Coords: v3.Concat(protein.Coords[0], pose.Coords[0])},
		})
	}
	return frames, nil
}

// poseSelection selects the atoms after the first nprot as the ligand.
func poseSelection(nprot int, target string) fingerprint.Selection {
	return func(s fingerprint.Structure) ([]chem.Residue, []chem.Residue, error) {
		if s.Len() <= nprot {
			return nil, nil, errors.Newf("structure %T has no atoms after the protein", s)
		}
		return fingerprint.QuerySelection(fmt.Sprintf("index %d-%d", nprot, s.Len()-1), target)(s)
	}
}

func runDock(ctx context.Context, app *appContext, opts *dockOptions) error {
	log := app.Logger.Named("dock")
	protein, err := chem.PDBFileRead(opts.Protein)
	if err != nil {
		return errors.Wrapf(err, "reading %s", opts.Protein)
	}
	if len(protein.Coords) == 0 {
		return errors.Newf("%s has no coordinates", opts.Protein)
	}
	if err := chemgraph.Perceive(protein.Topology, protein.Coords[0]); err != nil {
		return err
	}
	poses, err := readPoses(opts.Poses)
	if err != nil {
		return errors.Wrapf(err, "reading %s", opts.Poses)
	}
	if len(poses) == 0 {
		return errors.Newf("no poses in %s", opts.Poses)
	}
	frames, err := poseFrames(protein, poses)
	if err != nil {
		return err
	}
	sel := poseSelection(protein.Len(), opts.Target)
	if lig, tgt, err := sel(frames[0].Structure); err == nil {
		log.Debug("selection", logging.String("ligand", residueList(lig)), logging.Int("target_residues", len(tgt)))
	}
	log.Info("fingerprinting poses", logging.Int("poses", len(poses)), logging.Int("protein_atoms", protein.Len()))
	M, err := fingerprintSource(ctx, app, fingerprint.NewSliceSource(frames...), sel, log)
	if M == nil {
		return err
	}
	if werr := writeOutputs(M, opts.Out, opts.Hits, log); werr != nil {
		return werr
	}
	return err
}
