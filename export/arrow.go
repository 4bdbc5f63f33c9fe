/*
 * arrow.go, part of pwtraj.
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

//Package export writes the per-frame results of a trajectory as an Apache Arrow
//IPC file, one row per frame, for analysis with dataframe tools.
package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/google/uuid"
	chem "github.com/rmera/pwtraj"
)

//Options for WriteArrow. All are optional.
type Options struct {
	RunID     string //a random UUID if empty
	Source    string //the file the frames were read from
	Producer  string //"pwtraj" if empty
	Allocator memory.Allocator
}

//Schema returns the schema of the exported table. Energies are in eV, forces in eV/A,
//pressures in eV/A^3, magnetic moments in Bohr magnetons and dipoles in e*A.
func Schema(meta map[string]string) *arrow.Schema {
	f64 := arrow.PrimitiveTypes.Float64
	i64 := arrow.PrimitiveTypes.Int64
	fields := []arrow.Field{
		{Name: "frame", Type: i64},
		{Name: "line", Type: i64},
		{Name: "n_atoms", Type: i64},
		{Name: "formula", Type: arrow.BinaryTypes.String},
		{Name: "energy", Type: f64, Nullable: true},
		{Name: "free_energy", Type: f64, Nullable: true},
		{Name: "fermi", Type: f64, Nullable: true},
		{Name: "max_force", Type: f64, Nullable: true},
		{Name: "pressure", Type: f64, Nullable: true},
		{Name: "total_magmom", Type: f64, Nullable: true},
		{Name: "dipole_norm", Type: f64, Nullable: true},
		{Name: "volume", Type: f64, Nullable: true},
		{Name: "n_kpoints", Type: i64, Nullable: true},
		{Name: "n_spins", Type: i64, Nullable: true},
	}
	var md *arrow.Metadata
	if meta != nil {
		m := arrow.MetadataFrom(meta)
		md = &m
	}
	return arrow.NewSchema(fields, md)
}

//column helpers
func appendFloat(b array.Builder, v float64, ok bool) {
	fb := b.(*array.Float64Builder)
	if !ok {
		fb.AppendNull()
		return
	}
	fb.Append(v)
}

func appendInt(b array.Builder, v int, ok bool) {
	ib := b.(*array.Int64Builder)
	if !ok {
		ib.AppendNull()
		return
	}
	ib.Append(int64(v))
}

func value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

//Record builds the table for frames. The caller must release it.
func Record(frames []*chem.Frame, schema *arrow.Schema, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, F := range frames {
		R := F.Results
		b.Field(0).(*array.Int64Builder).Append(int64(i))
		b.Field(1).(*array.Int64Builder).Append(int64(F.Line))
		b.Field(2).(*array.Int64Builder).Append(int64(F.Len()))
		b.Field(3).(*array.StringBuilder).Append(F.Formula())
		var e, fe, fermi *float64
		if R != nil {
			e, fe, fermi = R.Energy, R.FreeEnergy, R.Fermi
		}
		v, ok := value(e)
		appendFloat(b.Field(4), v, ok)
		v, ok = value(fe)
		appendFloat(b.Field(5), v, ok)
		v, ok = value(fermi)
		appendFloat(b.Field(6), v, ok)
		v, ok = R.MaxForce()
		appendFloat(b.Field(7), v, ok)
		v, ok = R.Pressure()
		appendFloat(b.Field(8), v, ok)
		v, ok = R.TotalMagmom()
		appendFloat(b.Field(9), v, ok)
		v, ok = R.DipoleNorm()
		appendFloat(b.Field(10), v, ok)
		appendFloat(b.Field(11), F.Volume(), F.Cell != nil)
		appendInt(b.Field(12), R.NKPoints(), R.NKPoints() > 0)
		appendInt(b.Field(13), R.NSpins(), R.NSpins() > 0)
	}
	return b.NewRecord()
}

//WriteArrow writes one row per frame to w, as an Arrow IPC file. The schema
//metadata holds run_id, source and producer. It returns the run id used.
func WriteArrow(w io.Writer, frames []*chem.Frame, o Options) (string, error) {
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Producer == "" {
		o.Producer = "pwtraj"
	}
	mem := o.Allocator
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema := Schema(map[string]string{
		"run_id":   o.RunID,
		"source":   o.Source,
		"producer": o.Producer,
	})
	rec := Record(frames, schema, mem)
	defer rec.Release()
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return "", fmt.Errorf("export: creating the Arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return "", fmt.Errorf("export: writing %d frames: %w", len(frames), err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("export: closing the Arrow file: %w", err)
	}
	return o.RunID, nil
}
