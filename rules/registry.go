/*
 * registry.go, part of goifp.
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
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DefaultInteractions are the names of the rules active when none are requested.
var DefaultInteractions = []string{
	"Hydrophobic", "HBDonor", "HBAcceptor", "PiStacking", "Anionic",
	"Cationic", "CationPi", "PiCation", "VdWContact",
}

// Builtins returns every built-in rule with its default parameters. The default
// interactions come first, in the order of DefaultInteractions.
func Builtins() []Rule {
	hb := DefaultHBondParams()
	return []Rule{
		NewHydrophobic(DefaultHydrophobicParams()),
		NewHBDonor(hb),
		NewHBAcceptor(hb),
		NewPiStacking(DefaultPiStackingParams()),
		NewAnionic(DefaultIonicParams()),
		NewCationic(DefaultIonicParams()),
		NewCationPi(DefaultPiCationParams()),
		NewPiCation(DefaultPiCationParams()),
		NewVdWContact(DefaultVdWParams()),
		NewFaceToFace(DefaultFaceToFaceParams()),
		NewEdgeToFace(DefaultEdgeToFaceParams()),
		NewXBDonor(DefaultXBondParams()),
		NewXBAcceptor(DefaultXBondParams()),
		NewMetalDonor(DefaultMetalParams()),
		NewMetalAcceptor(DefaultMetalParams()),
		NewWaterBridge(hb),
	}
}

// Registry keeps the known rules, by name, in registration order.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// NewDefaultRegistry returns a registry with all the built-in rules.
func NewDefaultRegistry() *Registry {
	R := NewRegistry()
	for _, r := range Builtins() {
		if err := R.Register(r); err != nil {
			panic("rules: invalid built-in rule: " + err.Error())
		}
	}
	return R
}

// Register validates the parameters of rule and adds it to the registry. If a rule
// with the same name was registered, it is replaced, keeping its position.
func (R *Registry) Register(rule Rule) error {
	if rule == nil || rule.Name() == "" {
		return errors.New("rules: can't register a rule without a name")
	}
	if v, ok := rule.(Validator); ok {
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "rules: registering %s", rule.Name())
		}
	}
	R.mu.Lock()
	defer R.mu.Unlock()
	if i, ok := R.index[rule.Name()]; ok {
		R.rules[i] = rule
		return nil
	}
	R.index[rule.Name()] = len(R.rules)
	R.rules = append(R.rules, rule)
	return nil
}

// Deregister removes the rule with the given name.
func (R *Registry) Deregister(name string) error {
	R.mu.Lock()
	defer R.mu.Unlock()
	i, ok := R.index[name]
	if !ok {
		return unknownRule(name)
	}
	R.rules = append(R.rules[:i:i], R.rules[i+1:]...)
	delete(R.index, name)
	for j := i; j < len(R.rules); j++ {
		R.index[R.rules[j].Name()] = j
	}
	return nil
}

// List returns the registered rules in registration order. The slice is a copy.
func (R *Registry) List() []Rule {
	R.mu.RLock()
	defer R.mu.RUnlock()
	ret := make([]Rule, len(R.rules))
	copy(ret, R.rules)
	return ret
}

// Select returns the rules with the given names, in the given order. Repeated names
// are returned once.
func (R *Registry) Select(names ...string) ([]Rule, error) {
	R.mu.RLock()
	defer R.mu.RUnlock()
	ret := make([]Rule, 0, len(names))
	for _, name := range lo.Uniq(names) {
		i, ok := R.index[name]
		if !ok {
			return nil, unknownRule(name)
		}
		ret = append(ret, R.rules[i])
	}
	return ret, nil
}

// Get returns the rule with the given name, and false if there is none.
func (R *Registry) Get(name string) (Rule, bool) {
	R.mu.RLock()
	defer R.mu.RUnlock()
	i, ok := R.index[name]
	if !ok {
		return nil, false
	}
	return R.rules[i], true
}

// Names returns the names of the registered rules, in registration order.
func (R *Registry) Names() []string {
	return lo.Map(R.List(), func(r Rule, _ int) string { return r.Name() })
}

// MaxDistance returns the largest MaxDistance among the registered rules.
func (R *Registry) MaxDistance() float64 {
	return MaxDistance(R.List())
}

// MaxDistance returns the largest MaxDistance among rules, or 0 if there are none.
func MaxDistance(rules []Rule) float64 {
	return lo.Max(lo.Map(rules, func(r Rule, _ int) float64 { return r.MaxDistance() }))
}
