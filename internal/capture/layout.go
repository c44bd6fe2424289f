package capture

import (
	"fmt"
	"strings"

	"github.com/chrissnell/motionsync/internal/constants"
)

// Convention identifies how a capture declares which group is which sensor.
type Convention string

const (
	// ConventionModern captures list their labels explicitly in the root
	// LabelList attribute.
	ConventionModern Convention = "modern"

	// ConventionLegacy captures hold exactly two groups whose sides are
	// inferred from the free-text Configuration attribute.
	ConventionLegacy Convention = "legacy"
)

// layout resolves a Document into labels in canonical order and the group
// that backs each label.
type layout interface {
	convention() Convention
	resolve(doc *Document) ([]string, []*Group, error)
}

// detectLayout picks the layout once per open.
func detectLayout(doc *Document, rightMarkers []string) layout {
	if _, ok := doc.Attributes[AttrLabelList]; ok {
		return modernLayout{}
	}
	return legacyLayout{markers: rightMarkers}
}

type modernLayout struct{}

func (modernLayout) convention() Convention { return ConventionModern }

func (modernLayout) resolve(doc *Document) ([]string, []*Group, error) {
	var labels []string
	for _, l := range strings.Split(doc.Attributes[AttrLabelList], ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("empty %s attribute", AttrLabelList)
	}

	seen := make(map[string]bool, len(labels))
	groups := make([]*Group, len(labels))
	for i, l := range labels {
		if seen[l] {
			return nil, nil, fmt.Errorf("label %q listed twice", l)
		}
		seen[l] = true

		g := doc.group(l)
		if g == nil {
			return nil, nil, fmt.Errorf("label %q has no sensor group", l)
		}
		groups[i] = g
	}
	return labels, groups, nil
}

type legacyLayout struct {
	markers []string
}

func (legacyLayout) convention() Convention { return ConventionLegacy }

func (l legacyLayout) resolve(doc *Document) ([]string, []*Group, error) {
	if len(doc.Groups) == 0 {
		return nil, nil, fmt.Errorf("no %s attribute and no sensor groups", AttrLabelList)
	}
	if len(doc.Groups) != 2 {
		return nil, nil, fmt.Errorf("legacy capture must hold exactly 2 sensor groups, found %d", len(doc.Groups))
	}

	first, second := &doc.Groups[0], &doc.Groups[1]
	onSecond := l.matches(second)
	onFirst := l.matches(first)

	// The second group decides: a marker there makes it RIGHT whatever the
	// first group's configuration says.
	labels := []string{constants.LabelLeft, constants.LabelRight}
	switch {
	case onSecond:
		return labels, []*Group{first, second}, nil
	case onFirst:
		return labels, []*Group{second, first}, nil
	}
	return nil, nil, fmt.Errorf("no right-side marker (%s) found on sensor groups %q or %q",
		strings.Join(l.markers, ", "), first.Name, second.Name)
}

func (l legacyLayout) matches(g *Group) bool {
	cfg := strings.ToLower(g.Attributes[AttrConfiguration])
	if cfg == "" {
		return false
	}
	for _, m := range l.markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" && strings.Contains(cfg, m) {
			return true
		}
	}
	return false
}
