/*
 * rules.go, part of goifp.
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
	"io"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rmera/goifp/rules"
	"github.com/spf13/cobra"
)

// ruleInfo is how the rules command describes a rule.
type ruleInfo struct {
	Name        string      `json:"name"`
	Default     bool        `json:"default"`
	MaxDistance float64     `json:"max_distance"`
	Ligand      []string    `json:"ligand_roles"`
	Target      []string    `json:"target_roles"`
	Params      interface{} `json:"params,omitempty"`
}

func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the interaction rules and their parameters",
		Long:  "rules prints, as JSON, every registered rule with the parameters in effect after\napplying the configuration.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := getAppContext(cmd).Config.Registry()
			if err != nil {
				return err
			}
			return listRules(cmd.OutOrStdout(), reg)
		},
	}
}

func listRules(out io.Writer, reg *rules.Registry) error {
	defaults := make(map[string]bool, len(rules.DefaultInteractions))
	for _, n := range rules.DefaultInteractions {
		defaults[n] = true
	}
	rs := reg.List()
	infos := make([]ruleInfo, len(rs))
	for i, r := range rs {
		infos[i] = ruleInfo{
			Name:        r.Name(),
			Default:     defaults[r.Name()],
			MaxDistance: r.MaxDistance(),
			Ligand:      roleNames(r.LigandPatterns()),
			Target:      roleNames(r.TargetPatterns()),
		}
		if p, ok := r.(rules.Parametrized); ok {
			infos[i].Params = p.Params()
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(infos), "encoding rules")
}

func roleNames(roles []rules.Role) []string {
	ret := make([]string, len(roles))
	for i, r := range roles {
		ret[i] = string(r)
	}
	return ret
}
