// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publisher

import "strings"

// Family is a known publisher family. FamilyDefault covers every label no
// rule matches.
type Family int

const (
	FamilyDefault Family = iota
	FamilyRepository
	FamilyElsevier
	FamilySpringer
	FamilyAtypon
	FamilyWiley
	FamilyPLOS
	FamilyColdSpringHarbor
)

var familyNames = map[Family]string{
	FamilyDefault:          "default",
	FamilyRepository:       "PubMed Central",
	FamilyElsevier:         "Elsevier",
	FamilySpringer:         "Springer",
	FamilyAtypon:           "Atypon",
	FamilyWiley:            "Wiley",
	FamilyPLOS:             "PLOS",
	FamilyColdSpringHarbor: "Cold Spring Harbor",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "unknown"
}

// rule maps label substrings to a family. Any substring matches.
type rule struct {
	family  Family
	needles []string
}

// rules are tried in order; the first rule with a matching substring wins.
// Matching is case-sensitive.
var rules = []rule{
	{FamilyRepository, []string{"PubMed Central"}},
	{FamilyElsevier, []string{"Elsevier"}},
	{FamilySpringer, []string{"Springer", "Nature Publishing Group"}},
	{FamilyAtypon, []string{"Atypon"}},
	{FamilyWiley, []string{"Wiley"}},
	{FamilyPLOS, []string{"Public Library of Science"}},
	{FamilyColdSpringHarbor, []string{"Cold Spring Harbor"}},
}

// Classify returns the family of a provider label.
func Classify(label string) Family {
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(label, n) {
				return r.family
			}
		}
	}
	return FamilyDefault
}

// IsRepository reports whether label names the institutional repository.
func IsRepository(label string) bool {
	return Classify(label) == FamilyRepository
}
