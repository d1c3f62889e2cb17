package loader

import (
	"bytes"
	"os"
	"time"

	"github.com/ajitpratap0/metactx/pkg/omerrors"
	"gopkg.in/yaml.v3"
)

// Catalog is the YAML document the loader reads. Cross references use
// qualified names.
type Catalog struct {
	Locations          []Location          `yaml:"locations"`
	Profiles           []Profile           `yaml:"profiles"`
	Roles              []Role              `yaml:"roles"`
	Projects           []Project           `yaml:"projects"`
	Glossaries         []Glossary          `yaml:"glossaries"`
	DataClasses        []DataClass         `yaml:"dataClasses"`
	ValidValues        []ValidValueSet     `yaml:"validValues"`
	SolutionComponents []SolutionComponent `yaml:"solutionComponents"`
}

// Location is a catalog location.
type Location struct {
	QualifiedName string   `yaml:"qualifiedName"`
	Identifier    string   `yaml:"identifier"`
	DisplayName   string   `yaml:"displayName"`
	Description   string   `yaml:"description"`
	NestedIn      string   `yaml:"nestedIn"`
	AdjacentTo    []string `yaml:"adjacentTo"`
}

// Identity is a user identity of a profile.
type Identity struct {
	QualifiedName     string `yaml:"qualifiedName"`
	UserID            string `yaml:"userId"`
	DistinguishedName string `yaml:"distinguishedName"`
}

// Profile is a person, team or IT profile.
type Profile struct {
	QualifiedName string     `yaml:"qualifiedName"`
	Type          string     `yaml:"type"`
	Name          string     `yaml:"name"`
	FullName      string     `yaml:"fullName"`
	JobTitle      string     `yaml:"jobTitle"`
	ContactEmail  string     `yaml:"contactEmail"`
	Description   string     `yaml:"description"`
	Identities    []Identity `yaml:"identities"`
	// Members are the profiles of a team's members
	Members  []string `yaml:"members"`
	Location string   `yaml:"location"`
}

// Role is a person or team role.
type Role struct {
	QualifiedName string   `yaml:"qualifiedName"`
	Type          string   `yaml:"type"`
	Name          string   `yaml:"name"`
	Identifier    string   `yaml:"identifier"`
	Description   string   `yaml:"description"`
	Scope         string   `yaml:"scope"`
	HeadCount     int      `yaml:"headCount"`
	Appointees    []string `yaml:"appointees"`
}

// Project is a catalog project.
type Project struct {
	QualifiedName  string     `yaml:"qualifiedName"`
	Identifier     string     `yaml:"identifier"`
	Name           string     `yaml:"name"`
	Description    string     `yaml:"description"`
	ProjectStatus  string     `yaml:"projectStatus"`
	Priority       int        `yaml:"priority"`
	StartDate      *time.Time `yaml:"startDate"`
	PlannedEndDate *time.Time `yaml:"plannedEndDate"`
	Parent         string     `yaml:"parent"`
	DependsOn      []string   `yaml:"dependsOn"`
	Managers       []string   `yaml:"managers"`
	Team           []string   `yaml:"team"`
}

// Term is a glossary term.
type Term struct {
	QualifiedName string   `yaml:"qualifiedName"`
	DisplayName   string   `yaml:"displayName"`
	Summary       string   `yaml:"summary"`
	Description   string   `yaml:"description"`
	Abbreviation  string   `yaml:"abbreviation"`
	Examples      string   `yaml:"examples"`
	Usage         string   `yaml:"usage"`
	Synonyms      []string `yaml:"synonyms"`
	Antonyms      []string `yaml:"antonyms"`
	RelatedTerms  []string `yaml:"relatedTerms"`
}

// Glossary is a glossary and its terms.
type Glossary struct {
	QualifiedName string `yaml:"qualifiedName"`
	DisplayName   string `yaml:"displayName"`
	Description   string `yaml:"description"`
	Language      string `yaml:"language"`
	Usage         string `yaml:"usage"`
	Terms         []Term `yaml:"terms"`
}

// DataClass is a data class, optionally specialising another.
type DataClass struct {
	QualifiedName      string   `yaml:"qualifiedName"`
	DisplayName        string   `yaml:"displayName"`
	Description        string   `yaml:"description"`
	DataType           string   `yaml:"dataType"`
	MatchPropertyNames []string `yaml:"matchPropertyNames"`
	MatchThreshold     int      `yaml:"matchThreshold"`
	Parent             string   `yaml:"parent"`
	Meaning            string   `yaml:"meaning"`
}

// ValidValue is a member of a valid value set.
type ValidValue struct {
	QualifiedName  string `yaml:"qualifiedName"`
	DisplayName    string `yaml:"displayName"`
	Description    string `yaml:"description"`
	PreferredValue string `yaml:"preferredValue"`
	IsDefault      bool   `yaml:"isDefault"`
}

// ValidValueSet is a set of valid values.
type ValidValueSet struct {
	QualifiedName string       `yaml:"qualifiedName"`
	DisplayName   string       `yaml:"displayName"`
	Description   string       `yaml:"description"`
	Category      string       `yaml:"category"`
	DataType      string       `yaml:"dataType"`
	Values        []ValidValue `yaml:"values"`
}

// SolutionComponent is a component of a solution design.
type SolutionComponent struct {
	QualifiedName string   `yaml:"qualifiedName"`
	DisplayName   string   `yaml:"displayName"`
	Description   string   `yaml:"description"`
	ComponentType string   `yaml:"componentType"`
	Version       string   `yaml:"version"`
	SubComponents []string `yaml:"subComponents"`
	WiredTo       []string `yaml:"wiredTo"`
	Actors        []string `yaml:"actors"`
}

// Parse decodes a catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeInvalidParameter, "failed to parse catalog")
	}
	return &c, nil
}

// ReadFile reads and parses a catalog file.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, omerrors.Wrap(err, omerrors.ErrorTypeConfig, "failed to read catalog "+path)
	}
	return Parse(data)
}

// Validate checks that every entry has a qualified name and that no
// qualified name is used twice.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	add := func(section, qn string) error {
		if qn == "" {
			return omerrors.InvalidParameter("qualifiedName", "an entry in "+section+" has no qualifiedName")
		}
		if seen[qn] {
			return omerrors.InvalidParameter("qualifiedName", "qualifiedName "+qn+" is used twice")
		}
		seen[qn] = true
		return nil
	}

	for _, l := range c.Locations {
		if err := add("locations", l.QualifiedName); err != nil {
			return err
		}
	}
	for _, p := range c.Profiles {
		if err := add("profiles", p.QualifiedName); err != nil {
			return err
		}
		for _, id := range p.Identities {
			if err := add("identities", id.QualifiedName); err != nil {
				return err
			}
		}
	}
	for _, r := range c.Roles {
		if err := add("roles", r.QualifiedName); err != nil {
			return err
		}
	}
	for _, p := range c.Projects {
		if err := add("projects", p.QualifiedName); err != nil {
			return err
		}
	}
	for _, g := range c.Glossaries {
		if err := add("glossaries", g.QualifiedName); err != nil {
			return err
		}
		for _, t := range g.Terms {
			if err := add("terms", t.QualifiedName); err != nil {
				return err
			}
		}
	}
	for _, d := range c.DataClasses {
		if err := add("dataClasses", d.QualifiedName); err != nil {
			return err
		}
	}
	for _, s := range c.ValidValues {
		if err := add("validValues", s.QualifiedName); err != nil {
			return err
		}
		for _, v := range s.Values {
			if err := add("values", v.QualifiedName); err != nil {
				return err
			}
		}
	}
	for _, s := range c.SolutionComponents {
		if err := add("solutionComponents", s.QualifiedName); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of elements the catalog describes.
func (c *Catalog) Len() int {
	n := len(c.Locations) + len(c.Roles) + len(c.Projects) + len(c.DataClasses) + len(c.SolutionComponents)
	for _, p := range c.Profiles {
		n += 1 + len(p.Identities)
	}
	for _, g := range c.Glossaries {
		n += 1 + len(g.Terms)
	}
	for _, s := range c.ValidValues {
		n += 1 + len(s.Values)
	}
	return n
}
