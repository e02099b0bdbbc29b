package service

import (
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
)

// locationSnapshot is the governorate/district view of the location
// taxonomy held for one import run. Root nodes are governorates and their
// direct children are districts.
type locationSnapshot struct {
	governorates []*governorateEntry
}

type governorateEntry struct {
	node      *domain.Node
	key       string
	districts []*districtEntry
}

type districtEntry struct {
	node *domain.Node
	key  string
}

func (s *locationSnapshot) load(forest []*domain.Node) {
	s.governorates = nil
	for _, root := range forest {
		gov := s.addGovernorate(root)
		for _, child := range root.Children {
			gov.addDistrict(child)
		}
	}
}

func (s *locationSnapshot) addGovernorate(n *domain.Node) *governorateEntry {
	gov := &governorateEntry{node: n, key: taxonomy.Normalize(n.Name)}
	s.governorates = append(s.governorates, gov)
	return gov
}

func (g *governorateEntry) addDistrict(n *domain.Node) *districtEntry {
	d := &districtEntry{node: n, key: taxonomy.Normalize(n.Name)}
	g.districts = append(g.districts, d)
	return d
}

// governorate finds the governorate matching name. An exact canonical match
// is preferred over a containment match.
func (s *locationSnapshot) governorate(name string) *governorateEntry {
	key := taxonomy.Normalize(name)
	var loose *governorateEntry
	for _, g := range s.governorates {
		if g.key == key {
			return g
		}
		if loose == nil && taxonomy.MatchCanonical(g.key, key) {
			loose = g
		}
	}
	return loose
}

func (g *governorateEntry) district(name string) *districtEntry {
	key := taxonomy.Normalize(name)
	var loose *districtEntry
	for _, d := range g.districts {
		if d.key == key {
			return d
		}
		if loose == nil && taxonomy.MatchCanonical(d.key, key) {
			loose = d
		}
	}
	return loose
}
