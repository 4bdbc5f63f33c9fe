/*
 * main.go, part of pwtraj.
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

//pwtraj reads pw.x output logs and turns them into trajectories, tables and figures.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/pwtraj"
	"github.com/rmera/pwtraj/config"
	"github.com/rmera/pwtraj/formats"
	"github.com/rmera/pwtraj/qe"
	"github.com/rmera/pwtraj/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//app holds what the commands share: settings, logger and the flags that
//override the settings.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	configFile    string
	logLevel      string
	index         string
	allCandidates bool
	single        bool
}

//setup loads the settings and applies the flags given on the command line.
func (A *app) setup(cmd *cobra.Command) error {
	A.cfg = config.Default()
	boot, _ := config.Log{Level: "warn", Format: "console"}.Logger()
	if A.configFile != "" {
		c, err := config.Load(A.configFile, boot)
		if err != nil {
			return err
		}
		A.cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		A.cfg.Log.Level = A.logLevel
	}
	if flags.Changed("index") {
		A.cfg.Read.Index = A.index
	}
	if flags.Changed("all-candidates") {
		A.cfg.Read.AllCandidates = A.allCandidates
	}
	if flags.Changed("single-trajectory") {
		A.cfg.Read.SingleTrajectory = A.single
	}
	l, err := A.cfg.Log.Logger()
	if err != nil {
		return err
	}
	A.logger = l
	return nil
}

func (A *app) selection() (qe.Selection, error) {
	return qe.ParseSelection(A.cfg.Read.Index)
}

func (A *app) open(ctx context.Context, uri string) (io.ReadCloser, error) {
	s := A.cfg.Source
	return source.Open(ctx, uri,
		source.WithS3(source.S3{Region: s.Region, Endpoint: s.Endpoint, PathStyle: s.PathStyle}),
		source.WithLogger(A.logger))
}

//handlerFor returns the format for name. "-" is a pw.x log.
func handlerFor(name, forced string) (*formats.Handler, error) {
	R := formats.Default()
	if forced != "" {
		H, ok := R.Lookup(forced)
		if !ok {
			return nil, fmt.Errorf("unknown format %q, known formats: %v", forced, R.Names())
		}
		return H, nil
	}
	if name == "-" {
		H, _ := R.Lookup("espresso-out")
		return H, nil
	}
	return R.ForFile(name)
}

//readFrames reads the selected frames of uri.
func (A *app) readFrames(ctx context.Context, uri, format string) ([]*chem.Frame, error) {
	H, err := handlerFor(uri, format)
	if err != nil {
		return nil, err
	}
	if H.Read == nil {
		return nil, fmt.Errorf("%s files can't be read", H.Name)
	}
	sel, err := A.selection()
	if err != nil {
		return nil, err
	}
	r, err := A.open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return H.Read(r, formats.Options{
		Selection:        &sel,
		AllCandidates:    A.cfg.Read.AllCandidates,
		SingleTrajectory: A.cfg.Read.SingleTrajectory,
		Logger:           A.logger,
		Name:             uri,
	})
}

//readLog reads a whole pw.x log.
func (A *app) readLog(ctx context.Context, uri string) (*qe.Log, error) {
	r, err := A.open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	L, err := qe.NewLog(r)
	if err != nil {
		return nil, err
	}
	if uri != "-" {
		L.SetFileName(uri)
	}
	return L, nil
}

func newRootCmd() *cobra.Command {
	A := &app{}
	root := &cobra.Command{
		Use:   "pwtraj",
		Short: "Read Quantum ESPRESSO pw.x logs as trajectories",
		Long: `pwtraj reads the output logs of pw.x, including restarted runs, and
gives the structures found in them together with their energies, forces,
stress, magnetic moments and band energies.

Files can be local, "-" for the standard input, or s3://bucket/key, and may
be compressed with gzip (.gz) or zstd (.zst).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return A.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if A.logger != nil {
				_ = A.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&A.configFile, "config", "", "settings file (.toml or .yaml)")
	pf.StringVar(&A.logLevel, "log-level", "warn", "debug, info, warn or error")
	pf.StringVarP(&A.index, "index", "i", "-1", `frames to read: an index such as "-1" or a slice such as "::2"`)
	pf.BoolVar(&A.allCandidates, "all-candidates", false, "include structures without results")
	pf.BoolVar(&A.single, "single-trajectory", false, "treat restarted runs as one trajectory and check its consistency")

	root.AddCommand(infoCmd(A), headerCmd(A), convertCmd(A), exportCmd(A), plotCmd(A), statsCmd(A))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
