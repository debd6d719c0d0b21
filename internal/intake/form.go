package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field identifies a single FormData entry addressable by UpdateField.
type Field string

const (
	FieldProjectName Field = "projectName"
	FieldDescription Field = "description"
	FieldServices    Field = "services"
	FieldBudget      Field = "budget"
	FieldTimeline    Field = "timeline"
)

// Fields lists every addressable field in display order.
var Fields = []Field{FieldProjectName, FieldDescription, FieldServices, FieldBudget, FieldTimeline}

var (
	// ErrUnknownField is returned when an update names a field that does not exist.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when an update carries a value the field cannot hold.
	ErrInvalidValue = errors.New("invalid value")
)

// Catalog of services the agency offers.
const (
	ServiceWebsite   = "Website Development"
	ServiceMobileApp = "Mobile App Development"
	ServiceBrand     = "Brand Development"
	ServiceMarketing = "Marketing"
)

// ServiceCatalog is the ordered list of selectable services.
var ServiceCatalog = []string{ServiceWebsite, ServiceMobileApp, ServiceBrand, ServiceMarketing}

// IsService reports whether name is part of the catalog.
func IsService(name string) bool {
	for _, s := range ServiceCatalog {
		if s == name {
			return true
		}
	}
	return false
}

// Budget is the budget range chosen on the last step.
type Budget string

const (
	BudgetUnset       Budget = ""
	Budget5kTo10k     Budget = "5000-10000"
	Budget10kTo25k    Budget = "10000-25000"
	Budget25kTo50k    Budget = "25000-50000"
	Budget50kAndAbove Budget = "50000+"
)

// Budgets lists the selectable budget ranges in display order.
var Budgets = []Budget{Budget5kTo10k, Budget10kTo25k, Budget25kTo50k, Budget50kAndAbove}

// Label returns the human readable range.
func (b Budget) Label() string {
	switch b {
	case Budget5kTo10k:
		return "$5,000 - $10,000"
	case Budget10kTo25k:
		return "$10,000 - $25,000"
	case Budget25kTo50k:
		return "$25,000 - $50,000"
	case Budget50kAndAbove:
		return "$50,000+"
	default:
		return "Select budget range"
	}
}

// ParseBudget converts a raw option value into a Budget.
// The empty string parses to BudgetUnset.
func ParseBudget(s string) (Budget, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BudgetUnset, nil
	}
	for _, b := range Budgets {
		if string(b) == s {
			return b, nil
		}
	}
	return BudgetUnset, fmt.Errorf("%w: budget %q", ErrInvalidValue, s)
}

// Timeline is the delivery timeline in months.
type Timeline string

const (
	TimelineUnset        Timeline = ""
	Timeline1To2         Timeline = "1-2"
	Timeline3To4         Timeline = "3-4"
	Timeline5To6         Timeline = "5-6"
	TimelineSixAndLonger Timeline = "6+"
)

// Timelines lists the selectable timelines in display order.
var Timelines = []Timeline{Timeline1To2, Timeline3To4, Timeline5To6, TimelineSixAndLonger}

// Label returns the human readable timeline.
func (t Timeline) Label() string {
	if t == TimelineUnset {
		return "Select timeline"
	}
	return string(t) + " months"
}

// ParseTimeline converts a raw option value into a Timeline.
// The empty string parses to TimelineUnset.
func ParseTimeline(s string) (Timeline, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimelineUnset, nil
	}
	for _, t := range Timelines {
		if string(t) == s {
			return t, nil
		}
	}
	return TimelineUnset, fmt.Errorf("%w: timeline %q", ErrInvalidValue, s)
}

// ServiceSet is an unordered set of catalog services.
type ServiceSet map[string]struct{}

// NewServiceSet builds a set from names, dropping duplicates.
func NewServiceSet(names ...string) ServiceSet {
	s := make(ServiceSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is selected.
func (s ServiceSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// List returns the selected services in catalog order. Names outside the
// catalog follow, sorted.
func (s ServiceSet) List() []string {
	out := make([]string, 0, len(s))
	for _, name := range ServiceCatalog {
		if s.Has(name) {
			out = append(out, name)
		}
	}
	var extra []string
	for name := range s {
		if !IsService(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Clone returns an independent copy.
func (s ServiceSet) Clone() ServiceSet {
	c := make(ServiceSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// MarshalJSON encodes the set as a catalog-ordered array.
func (s ServiceSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

// UnmarshalJSON decodes an array of service names.
func (s *ServiceSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewServiceSet(names...)
	return nil
}

// FormData is the information collected across the wizard steps.
type FormData struct {
	ProjectName string     `json:"projectName"`
	Description string     `json:"description"`
	Services    ServiceSet `json:"services"`
	Budget      Budget     `json:"budget"`
	Timeline    Timeline   `json:"timeline"`
}

// EmptyForm returns the default form every session starts with.
func EmptyForm() FormData {
	return FormData{Services: ServiceSet{}}
}

// Clone returns a deep copy so snapshots never alias controller state.
func (f FormData) Clone() FormData {
	c := f
	c.Services = f.Services.Clone()
	return c
}

// IsEmpty reports whether the form equals its default value.
func (f FormData) IsEmpty() bool {
	return f.ProjectName == "" && f.Description == "" && len(f.Services) == 0 &&
		f.Budget == BudgetUnset && f.Timeline == TimelineUnset
}

// apply merges value into the named field. String fields take a string,
// services take a []string or ServiceSet, enums take their raw option value.
func (f *FormData) apply(field Field, value any) error {
	switch field {
	case FieldProjectName, FieldDescription:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, field, value)
		}
		if field == FieldProjectName {
			f.ProjectName = s
		} else {
			f.Description = s
		}
	case FieldServices:
		var names []string
		switch v := value.(type) {
		case []string:
			names = v
		case ServiceSet:
			names = v.List()
		default:
			return fmt.Errorf("%w: services expects a list, got %T", ErrInvalidValue, value)
		}
		for _, n := range names {
			if !IsService(n) {
				return fmt.Errorf("%w: unknown service %q", ErrInvalidValue, n)
			}
		}
		f.Services = NewServiceSet(names...)
	case FieldBudget:
		s, ok := value.(string)
		if b, isBudget := value.(Budget); isBudget {
			s, ok = string(b), true
		}
		if !ok {
			return fmt.Errorf("%w: budget expects a string, got %T", ErrInvalidValue, value)
		}
		b, err := ParseBudget(s)
		if err != nil {
			return err
		}
		f.Budget = b
	case FieldTimeline:
		s, ok := value.(string)
		if t, isTimeline := value.(Timeline); isTimeline {
			s, ok = string(t), true
		}
		if !ok {
			return fmt.Errorf("%w: timeline expects a string, got %T", ErrInvalidValue, value)
		}
		t, err := ParseTimeline(s)
		if err != nil {
			return err
		}
		f.Timeline = t
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ParseField resolves a field key as used by hosts (e.g. "projectName").
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}
