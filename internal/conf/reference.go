package conf

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceFiles embed.FS

// LocationRef is one known location with the name variants the legacy
// store uses for it.
type LocationRef struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Code     string   `yaml:"code"`
	Region   string   `yaml:"region"`
	Variants []string `yaml:"variants"`
}

// RegionLink assigns a location, matched by name, to a region.
type RegionLink struct {
	Location string `yaml:"location"`
	Region   string `yaml:"region"`
}

// RoomAssignment places a legacy room in a location.
type RoomAssignment struct {
	Room     string `yaml:"room"`
	Location string `yaml:"location"`
}

// ReferenceData is the hand-maintained mapping data the migration relies on.
type ReferenceData struct {
	Roles           []string         `yaml:"roles"`
	Regions         []string         `yaml:"regions"`
	DefaultLocation LocationRef      `yaml:"defaultlocation"`
	UnknownLocation LocationRef      `yaml:"unknownlocation"`
	Locations       []LocationRef    `yaml:"locations"`
	RegionLinks     []RegionLink     `yaml:"regionlinks"`
	RoomAssignments []RoomAssignment `yaml:"roomassignments"`
}

// LoadReferenceData reads the reference data from path, or the embedded
// copy when path is empty.
func LoadReferenceData(path string) (*ReferenceData, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = referenceFiles.ReadFile("reference.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading reference data: %w", err)
	}

	ref := &ReferenceData{}
	if err := yaml.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("error parsing reference data: %w", err)
	}

	if err := ref.validate(); err != nil {
		return nil, err
	}
	return ref, nil
}

// WithDefaultLocation returns a copy using name for the default location.
func (r *ReferenceData) WithDefaultLocation(name string) *ReferenceData {
	if name == "" || name == r.DefaultLocation.Name {
		return r
	}
	clone := *r
	clone.DefaultLocation.Name = name
	return &clone
}

// Location looks a location up by its exact name.
func (r *ReferenceData) Location(name string) (LocationRef, bool) {
	for _, loc := range r.Locations {
		if loc.Name == name {
			return loc, true
		}
	}
	return LocationRef{}, false
}

// LocationOrUnknown returns the reference entry for name, falling back to
// the unknown location type and code.
func (r *ReferenceData) LocationOrUnknown(name string) LocationRef {
	if loc, ok := r.Location(name); ok {
		return loc
	}
	return LocationRef{Name: name, Type: r.UnknownLocation.Type, Code: r.UnknownLocation.Code}
}

func (r *ReferenceData) validate() error {
	ve := ValidationError{}
	if len(r.Roles) == 0 {
		ve.Errors = append(ve.Errors, "reference data has no roles")
	}
	if len(r.Regions) == 0 {
		ve.Errors = append(ve.Errors, "reference data has no regions")
	}
	if r.DefaultLocation.Name == "" || r.DefaultLocation.Code == "" || r.DefaultLocation.Type == "" {
		ve.Errors = append(ve.Errors, "reference data default location needs name, code and type")
	}
	for i, loc := range r.Locations {
		if loc.Name == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("reference location %d has no name", i))
		}
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
