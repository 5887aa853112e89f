/*
 * options.go, part of goifp.
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

package fingerprint

import (
	"runtime"

	"github.com/rmera/goifp/internal/logging"
)

// DefaultProximityCutoff is the prefilter distance used when none is given, unless
// a rule needs a longer one.
const DefaultProximityCutoff = 6.5

// DefaultCacheSize is the default number of (residue, role) group lists kept by
// an Evaluator.
const DefaultCacheSize = 4096

// Options are the settings of a Pipeline and of the objects it builds.
type Options struct {
	//Number of frames processed at the same time.
	Workers int
	//Ingest frames in source order, so columns are numbered the same in every run.
	Ordered bool
	//Stop at the first failed frame.
	FailFast bool
	//Sort the columns of the matrix by ligand residue, target residue and rule.
	CanonicalOrder bool
	//Prefilter distance. 0 means the largest of DefaultProximityCutoff and the
	//longest rule distance.
	ProximityCutoff float64
	//Size of the evaluator cache. 0 disables it.
	CacheSize int
	//Keep the hits of each frame, not only the bits.
	KeepHits bool
	Logger   logging.Logger
	Metrics  *Metrics
}

// Option modifies Options.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Workers:   runtime.NumCPU(),
		CacheSize: DefaultCacheSize,
		KeepHits:  true,
		Logger:    logging.NewNopLogger(),
	}
}

func newOptions(opts []Option) Options {
	o := defaultOptions()
	for _, f := range opts {
		f(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	return o
}

func Workers(n int) Option               { return func(o *Options) { o.Workers = n } }
func Ordered(b bool) Option              { return func(o *Options) { o.Ordered = b } }
func FailFast(b bool) Option             { return func(o *Options) { o.FailFast = b } }
func CanonicalOrder(b bool) Option       { return func(o *Options) { o.CanonicalOrder = b } }
func ProximityCutoff(d float64) Option   { return func(o *Options) { o.ProximityCutoff = d } }
func CacheSize(n int) Option             { return func(o *Options) { o.CacheSize = n } }
func KeepHits(b bool) Option             { return func(o *Options) { o.KeepHits = b } }
func WithLogger(l logging.Logger) Option { return func(o *Options) { o.Logger = l } }
func WithMetrics(m *Metrics) Option      { return func(o *Options) { o.Metrics = m } }
