/*
 * config.go, part of pwtraj.
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

//Package config reads the pwtraj settings file, in TOML or YAML.
//
//An example, in TOML:
//
//	[read]
//	index = ":"
//	single_trajectory = true
//
//	[log]
//	level = "debug"
//	format = "console"
//
//	[plot]
//	color_scheme = "vesta"
//	atomic_radius = 0.8
//	[plot.atomic_colors]
//	Fe = "#b07030"
//	O = "red"
//
//	[source]
//	region = "eu-west-1"
//	endpoint = "http://localhost:9000"
//	path_style = true
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml"
	chem "github.com/rmera/pwtraj"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//Read holds the default trajectory-reading settings.
type Read struct {
	Index            string `toml:"index" yaml:"index"`
	AllCandidates    bool   `toml:"all_candidates" yaml:"all_candidates"`
	SingleTrajectory bool   `toml:"single_trajectory" yaml:"single_trajectory"`
}

//Log holds the logging settings.
type Log struct {
	Level  string `toml:"level" yaml:"level"`   //debug, info, warn, error
	Format string `toml:"format" yaml:"format"` //console or json
}

//Plot holds the settings for the figures.
type Plot struct {
	ColorScheme  string            `toml:"color_scheme" yaml:"color_scheme"`
	AtomicColors map[string]string `toml:"atomic_colors" yaml:"atomic_colors"` //symbol to color name or #rrggbb
	AtomicRadius float64           `toml:"atomic_radius" yaml:"atomic_radius"` //scales the covalent radii
	Width        float64           `toml:"width" yaml:"width"`                 //cm
	Height       float64           `toml:"height" yaml:"height"`               //cm
}

//Source holds the settings for remote files.
type Source struct {
	Region    string `toml:"region" yaml:"region"`
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	PathStyle bool   `toml:"path_style" yaml:"path_style"`
}

//Export holds the settings for the columnar export.
type Export struct {
	Producer string `toml:"producer" yaml:"producer"`
}

//Config contains all the settings.
type Config struct {
	Read   Read   `toml:"read" yaml:"read"`
	Log    Log    `toml:"log" yaml:"log"`
	Plot   Plot   `toml:"plot" yaml:"plot"`
	Source Source `toml:"source" yaml:"source"`
	Export Export `toml:"export" yaml:"export"`
}

//Default returns the settings used when there is no file.
func Default() *Config {
	return &Config{
		Read:   Read{Index: "-1"},
		Log:    Log{Level: "warn", Format: "console"},
		Plot:   Plot{ColorScheme: "jmol", AtomicRadius: 1, Width: 12, Height: 9},
		Source: Source{Region: "us-east-1"},
		Export: Export{Producer: "pwtraj"},
	}
}

//The keys allowed in each section. atomic_colors takes any key.
var known = map[string][]string{
	"read":   {"index", "all_candidates", "single_trajectory"},
	"log":    {"level", "format"},
	"plot":   {"color_scheme", "atomic_colors", "atomic_radius", "width", "height"},
	"source": {"region", "endpoint", "path_style"},
	"export": {"producer"},
}

//unknownKeys returns the keys in raw that are not settings, as "section.key", sorted.
func unknownKeys(raw map[string]interface{}) []string {
	var ret []string
	for section, v := range raw {
		keys, ok := known[section]
		if !ok {
			ret = append(ret, section)
			continue
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			continue
		}
		for k := range m {
			found := false
			for _, kk := range keys {
				if k == kk {
					found = true
					break
				}
			}
			if !found {
				ret = append(ret, section+"."+k)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

//Load reads the settings file name. The format is chosen from the extension:
//.toml, or .yaml/.yml. Missing settings keep their default values.
func Load(name string, logger *zap.Logger) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	var yml bool
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
	case ".yaml", ".yml":
		yml = true
	default:
		return nil, fmt.Errorf("config: can't tell the format of %s, use .toml or .yaml", name)
	}
	return Decode(f, yml, logger)
}

//Decode reads settings from r, in YAML if yml is true, in TOML otherwise. Unknown
//keys are logged and ignored. An unknown color scheme is replaced by jmol, with a warning.
func Decode(r io.Reader, yml bool, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	C := Default()
	var raw map[string]interface{}
	if yml {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, C); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		raw = tree.ToMap()
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(C); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	for _, k := range unknownKeys(raw) {
		logger.Warn("unknown setting ignored", zap.String("key", k))
	}
	C.check(logger)
	return C, nil
}

//check replaces empty settings by the defaults, and invalid ones too, with a warning.
func (C *Config) check(logger *zap.Logger) {
	D := Default()
	str := func(s *string, def string) {
		if *s == "" {
			*s = def
		}
	}
	str(&C.Read.Index, D.Read.Index)
	str(&C.Log.Level, D.Log.Level)
	str(&C.Log.Format, D.Log.Format)
	str(&C.Plot.ColorScheme, D.Plot.ColorScheme)
	str(&C.Source.Region, D.Source.Region)
	str(&C.Export.Producer, D.Export.Producer)
	scheme := strings.ToLower(C.Plot.ColorScheme)
	valid := false
	for _, s := range chem.ColorSchemes() {
		if s == scheme {
			valid = true
		}
	}
	if !valid {
		logger.Warn("unknown color scheme, using jmol", zap.String("color_scheme", C.Plot.ColorScheme))
		scheme = D.Plot.ColorScheme
	}
	C.Plot.ColorScheme = scheme
	positive := func(v *float64, def float64, name string) {
		if *v < 0 {
			logger.Warn("setting must be positive, using the default", zap.String("key", "plot."+name), zap.Float64("value", *v))
		}
		if *v <= 0 {
			*v = def
		}
	}
	positive(&C.Plot.AtomicRadius, D.Plot.AtomicRadius, "atomic_radius")
	positive(&C.Plot.Width, D.Plot.Width, "width")
	positive(&C.Plot.Height, D.Plot.Height, "height")
	switch C.Log.Format {
	case "console", "json":
	default:
		logger.Warn("unknown log format, using console", zap.String("format", C.Log.Format))
		C.Log.Format = D.Log.Format
	}
}

//Logger builds the logger described by the settings. Logs go to the standard error.
func (L Log) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(L.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var zc zap.Config
	if L.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
