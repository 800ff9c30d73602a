package packaging

import (
	"fmt"

	"github.com/arthur-debert/instkit/pkg/errors"
	"github.com/arthur-debert/instkit/pkg/logging"
	"github.com/arthur-debert/instkit/pkg/rules"
)

// Selection is the outcome of gating a manifest's packs
type Selection struct {
	Packs   []PackInfo
	Skipped map[string]string // pack id to reason
}

// IDs returns the selected pack ids in build order
func (s *Selection) IDs() []string {
	return packIDs(s.Packs)
}

// RulesPacks returns the pack metadata a rules.Engine needs for the manifest's packs
func (m *Manifest) RulesPacks() []rules.Pack {
	out := make([]rules.Pack, len(m.Packs))
	for i, p := range m.Packs {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		out[i] = rules.Pack{ID: p.ID, Name: name, Condition: p.Condition}
	}
	return out
}

// SelectPacks decides which packs to install. With no requested ids every
// non-optional pack is a candidate; otherwise only the requested ones are,
// and a requested optional pack is kept even when its condition is false.
//
// Pack conditions may refer to pack.selected.<id>, so the selection is
// recomputed until it stops changing.
func SelectPacks(engine *rules.Engine, packs []PackInfo, requested []string) (*Selection, error) {
	logger := logging.GetLogger("packaging.selection")

	byID := make(map[string]PackInfo, len(packs))
	for _, p := range packs {
		byID[p.ID] = p
		if p.Condition != "" {
			engine.AddPackCondition(p.ID, p.Condition, p.Optional)
		}
	}

	explicit := make(map[string]bool, len(requested))
	var notFound []string
	for _, id := range requested {
		if _, ok := byID[id]; !ok {
			notFound = append(notFound, id)
			continue
		}
		explicit[id] = true
	}
	if len(notFound) > 0 {
		return nil, errors.New(errors.ErrPackNotFound, "pack(s) not found").
			WithDetail("notFound", notFound).
			WithDetail("available", packIDs(packs))
	}

	sel := &Selection{Skipped: make(map[string]string)}
	var candidates []PackInfo
	for _, p := range packs {
		switch {
		case len(requested) > 0 && !explicit[p.ID]:
			sel.Skipped[p.ID] = "not requested"
		case len(requested) == 0 && p.Optional:
			sel.Skipped[p.ID] = "optional"
		default:
			candidates = append(candidates, p)
		}
	}

	allowed := func(p PackInfo) bool {
		return engine.CanInstallPack(p.ID) || (explicit[p.ID] && engine.CanInstallPackOptional(p.ID))
	}

	current := candidates
	for round := 0; round <= len(candidates); round++ {
		engine.SetSelectedPacks(packIDs(current)...)
		var next []PackInfo
		for _, p := range candidates {
			if allowed(p) {
				next = append(next, p)
			}
		}
		if sameIDs(next, current) {
			break
		}
		if round == len(candidates) {
			logger.Warn().Strs("packs", packIDs(next)).Msg("Pack selection did not settle")
		}
		current = next
	}
	engine.SetSelectedPacks(packIDs(current)...)

	sel.Packs = current
	chosen := make(map[string]bool, len(current))
	for _, p := range current {
		chosen[p.ID] = true
	}
	for _, p := range candidates {
		if !chosen[p.ID] {
			sel.Skipped[p.ID] = fmt.Sprintf("condition %q is false", p.Condition)
		}
	}

	logger.Info().
		Int("selected", len(sel.Packs)).
		Int("total", len(packs)).
		Msg("Selected packs")
	return sel, nil
}

func packIDs(packs []PackInfo) []string {
	ids := make([]string, len(packs))
	for i, p := range packs {
		ids[i] = p.ID
	}
	return ids
}

func sameIDs(a, b []PackInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
