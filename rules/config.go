/*
 * config.go, part of goifp.
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

package rules

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

type factory func(raw map[string]interface{}) (Rule, error)

// newFactory returns a factory that decodes raw over the defaults given by def
// and builds the rule with build.
func newFactory[P any, R Rule](def func() P, build func(P) R) factory {
	return func(raw map[string]interface{}) (Rule, error) {
		p := def()
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return build(p), nil
	}
}

var factories = map[string]factory{
	"Hydrophobic":   newFactory(DefaultHydrophobicParams, NewHydrophobic),
	"HBDonor":       newFactory(DefaultHBondParams, NewHBDonor),
	"HBAcceptor":    newFactory(DefaultHBondParams, NewHBAcceptor),
	"PiStacking":    newFactory(DefaultPiStackingParams, NewPiStacking),
	"Anionic":       newFactory(DefaultIonicParams, NewAnionic),
	"Cationic":      newFactory(DefaultIonicParams, NewCationic),
	"CationPi":      newFactory(DefaultPiCationParams, NewCationPi),
	"PiCation":      newFactory(DefaultPiCationParams, NewPiCation),
	"VdWContact":    newFactory(DefaultVdWParams, NewVdWContact),
	"FaceToFace":    newFactory(DefaultFaceToFaceParams, NewFaceToFace),
	"EdgeToFace":    newFactory(DefaultEdgeToFaceParams, NewEdgeToFace),
	"XBDonor":       newFactory(DefaultXBondParams, NewXBDonor),
	"XBAcceptor":    newFactory(DefaultXBondParams, NewXBAcceptor),
	"MetalDonor":    newFactory(DefaultMetalParams, NewMetalDonor),
	"MetalAcceptor": newFactory(DefaultMetalParams, NewMetalAcceptor),
	"WaterBridge":   newFactory(DefaultHBondParams, NewWaterBridge),
}

func decodeParams(raw map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// CanonicalName returns the name of the built-in rule that matches name, ignoring case,
// and false if there is no such rule.
func CanonicalName(name string) (string, bool) {
	if _, ok := factories[name]; ok {
		return name, true
	}
	for k := range factories {
		if strings.EqualFold(k, name) {
			return k, true
		}
	}
	return "", false
}

// NewRule builds the built-in rule name, with the parameters in raw overriding the
// defaults. Names are not case-sensitive.
func NewRule(name string, raw map[string]interface{}) (Rule, error) {
	canon, ok := CanonicalName(name)
	if !ok {
		return nil, unknownRule(name)
	}
	r, err := factories[canon](raw)
	if err != nil {
		return nil, errors.Wrapf(err, "rules: decoding parameters of %s", canon)
	}
	return r, nil
}

// NewRegistryFromConfig returns a registry with all the built-in rules, where the
// rules named in params are built with the given parameters instead of the defaults.
// params usually comes from a configuration file, where keys are lowercase.
func NewRegistryFromConfig(params map[string]map[string]interface{}) (*Registry, error) {
	R := NewDefaultRegistry()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r, err := NewRule(name, params[name])
		if err != nil {
			return nil, err
		}
		if err := R.Register(r); err != nil {
			return nil, err
		}
	}
	return R, nil
}
