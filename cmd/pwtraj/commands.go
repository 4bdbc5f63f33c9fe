/*
 * commands.go, part of pwtraj.
 *
 * Copyright 2024 The pwtraj authors
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/chemplot"
	"github.com/rmera/pwtraj/chemstat"
	"github.com/rmera/pwtraj/export"
	"github.com/rmera/pwtraj/formats"
	"github.com/rmera/pwtraj/qe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
)

//column prints an optional value.
func column(v float64, ok bool, format string) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, v)
}

func infoCmd(A *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <log>",
		Short: "Summarize the runs and the selected frames of a pw.x log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			L, err := A.readLog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sel, err := A.selection()
			if err != nil {
				return err
			}
			T, err := L.Trajectory(qe.WithSelection(sel),
				qe.WithResultsRequired(!A.cfg.Read.AllCandidates),
				qe.WithSingleTrajectory(A.cfg.Read.SingleTrajectory),
				qe.WithLogger(A.logger))
			if err != nil {
				return err
			}
			frames, err := qe.Drain(T)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			done := "no"
			if L.NormalTermination() {
				done = "yes"
			}
			fmt.Fprintf(out, "runs: %d, finished: %s\n", L.Index().Count(qe.RunStart), done)
			fmt.Fprintf(out, "frames: %d qualified, %d selected\n", len(T.Qualified()), len(frames))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "line\tformula\tenergy (eV)\tmax force (eV/A)\tpressure (GPa)\tfermi (eV)\tmagmom (uB)")
			for _, F := range frames {
				R := F.Results
				var e, fermi float64
				eok := R != nil && R.Energy != nil
				if eok {
					e = *R.Energy
				}
				fok := R != nil && R.Fermi != nil
				if fok {
					fermi = *R.Fermi
				}
				f, fk := R.MaxForce()
				p, pk := R.Pressure()
				m, mk := R.TotalMagmom()
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", F.Line+1, F.Formula(),
					column(e, eok, "%.6f"), column(f, fk, "%.4f"), column(chem.EVA32GPa(p), pk, "%.3f"),
					column(fermi, fok, "%.4f"), column(m, mk, "%.3f"))
			}
			return w.Flush()
		},
	}
}

func headerCmd(A *app) *cobra.Command {
	return &cobra.Command{
		Use:   "header <log>",
		Short: "Print the header of each run in a pw.x log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			L, err := A.readLog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			headers, err := L.RunHeaders()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, H := range headers {
				fmt.Fprintf(out, "run %d, line %d: pw.x %s\n", i+1, H.Line+1, H.Version)
				fmt.Fprintf(out, "  atoms: %d, types: %d, electrons: %g, bands: %d\n", H.NAtoms, H.NTypes, H.NElectrons, H.NBands)
				fmt.Fprintf(out, "  ibrav: %d, alat: %.6f A, volume: %.4f A^3\n", H.Ibrav, H.Alat, H.Frame.Volume())
				fmt.Fprintf(out, "  cutoffs: %g Ry (wavefunctions), %g Ry (density)\n", H.EcutWfc, H.EcutRho)
				for _, s := range H.Species {
					fmt.Fprintf(out, "  %-4s valence %5.2f mass %9.4f %s\n", s.Label, s.Valence, s.Mass, s.Pseudo)
				}
			}
			return nil
		},
	}
}

//create opens name for writing, or returns the standard output for "-".
func create(cmd *cobra.Command, name string) (io.Writer, func() error, error) {
	if name == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	b := bufio.NewWriter(f)
	return b, func() error {
		if err := b.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}

func convertCmd(A *app) *cobra.Command {
	var from, to, template string
	var crystal bool
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert the selected frames to another format",
		Long: `Convert the selected frames to another format. The formats are chosen from the
file extensions, unless given with --from and --to. pw.x inputs (espresso-in) are
written for the last selected frame, taking namelists, pseudopotentials, k-points
and extra cards from the --template input, if given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := A.readFrames(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}
			H, err := handlerFor(args[1], to)
			if err != nil {
				return err
			}
			if H.Write == nil {
				return fmt.Errorf("%s files can't be written", H.Name)
			}
			o := formats.Options{Logger: A.logger, Name: args[1], Input: qe.WriteOptions{Crystal: crystal}}
			if template != "" {
				r, err := A.open(cmd.Context(), template)
				if err != nil {
					return err
				}
				I, err := qe.ParseInput(r)
				r.Close()
				if err != nil {
					return err
				}
				o.Params = I.Params
				o.Pseudos = I.Pseudopotentials()
				o.Input.KPoints = I.KPoints
				o.Input.AdditionalCards = I.Cards
			}
			w, closer, err := create(cmd, args[1])
			if err != nil {
				return err
			}
			if err := H.Write(w, frames, o); err != nil {
				closer()
				return err
			}
			A.logger.Info("frames converted", zap.Int("frames", len(frames)), zap.String("format", H.Name))
			return closer()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "input format ("+strings.Join(formats.Default().Names(), ", ")+")")
	cmd.Flags().StringVar(&to, "to", "", "output format")
	cmd.Flags().StringVar(&template, "template", "", "pw.x input to take the calculation settings from")
	cmd.Flags().BoolVar(&crystal, "crystal", false, "write pw.x positions in crystal coordinates")
	return cmd
}

func exportCmd(A *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <log> <output.arrow>",
		Short: "Write the results of the selected frames as an Arrow table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := A.readFrames(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			w, closer, err := create(cmd, args[1])
			if err != nil {
				return err
			}
			id, err := export.WriteArrow(w, frames, export.Options{Source: args[0], Producer: A.cfg.Export.Producer})
			if err != nil {
				closer()
				return err
			}
			if err := closer(); err != nil {
				return err
			}
			if args[1] != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s, run id %s\n", len(frames), args[1], id)
			}
			return nil
		},
	}
}

func plotCmd(A *app) *cobra.Command {
	var title string
	root := &cobra.Command{
		Use:   "plot",
		Short: "Draw figures from a pw.x log",
	}
	root.PersistentFlags().StringVar(&title, "title", "", "figure title")
	//figure builds a plot from the selected frames.
	figure := func(use, short string, all bool, build func([]*chem.Frame) (*plot.Plot, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <log> <output>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if all && !cmd.Flags().Changed("index") && A.configFile == "" {
					A.cfg.Read.Index = ":"
				}
				frames, err := A.readFrames(cmd.Context(), args[0], "")
				if err != nil {
					return err
				}
				if len(frames) == 0 {
					return fmt.Errorf("no frames selected")
				}
				p, err := build(frames)
				if err != nil {
					return err
				}
				return chemplot.Save(p, args[1], A.cfg.Plot)
			},
		}
	}
	root.AddCommand(
		figure("energy", "Plot the energy of every frame (or of the --index ones)", true, func(frames []*chem.Frame) (*plot.Plot, error) {
			return chemplot.EnergyFigure(frames, title)
		}),
		figure("bands", "Plot the bands of the last selected frame", false, func(frames []*chem.Frame) (*plot.Plot, error) {
			return chemplot.BandsFigure(frames[len(frames)-1], title)
		}),
		figure("structure", "Plot the xy projection of the last selected frame", false, func(frames []*chem.Frame) (*plot.Plot, error) {
			F := frames[len(frames)-1]
			t := title
			if t == "" {
				t = F.Formula()
			}
			return chemplot.StructureFigure(F, A.cfg.Plot, t)
		}),
	)
	return root
}

func statsCmd(A *app) *cobra.Command {
	var acf string
	var bins int
	cmd := &cobra.Command{
		Use:   "stats <log>",
		Short: "Statistics of the computed quantities along the trajectory",
		Long: `Statistics of the computed quantities along the trajectory. All the frames are
used unless --index is given. --acf prints the autocorrelation of one quantity and
--bins its histogram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("index") && A.configFile == "" {
				A.cfg.Read.Index = ":"
			}
			frames, err := A.readFrames(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "quantity\tn\tmean\tstd\tmin\tmax\tdrift")
			for _, q := range chemstat.Quantities() {
				S := chemstat.Summarize(frames, q)
				if S.N == 0 {
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n", q, S.N, S.Mean, S.StdDev, S.Min, S.Max, S.Drift)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if acf == "" {
				return nil
			}
			q, err := chemstat.ParseQuantity(acf)
			if err != nil {
				return err
			}
			values, _ := chemstat.Series(frames, q)
			if bins > 0 {
				div, counts, err := chemstat.Histogram(values, bins)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nhistogram of %s\n", q)
				for i, c := range counts {
					fmt.Fprintf(out, "%12.6f %12.6f %6.0f\n", div[i], div[i+1], c)
				}
			}
			r, err := chemstat.Autocorrelation(values)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nautocorrelation of %s\n", q)
			for lag, v := range r {
				fmt.Fprintf(out, "%6d %9.5f\n", lag, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&acf, "acf", "", "quantity to correlate (energy, max_force, pressure, magmom, fermi, volume)")
	cmd.Flags().IntVar(&bins, "bins", 0, "histogram bins for the --acf quantity")
	return cmd
}
