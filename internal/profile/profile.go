// Package profile defines the candidate profile accepted by a
// recommendation request and its canonical text rendering.
package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Profile is the candidate input of one recommendation request. It is
// constructed per request and never persisted by the engine itself.
type Profile struct {
	Name               string `json:"name" mapstructure:"name" validate:"required"`
	Education          string `json:"education" mapstructure:"education" validate:"required"`
	Skills             string `json:"skills" mapstructure:"skills" validate:"required"`
	Experience         string `json:"experience,omitempty" mapstructure:"experience"`
	Interests          string `json:"interests,omitempty" mapstructure:"interests"`
	LocationPreference string `json:"location_preference,omitempty" mapstructure:"location_preference"`
	CareerGoals        string `json:"career_goals,omitempty" mapstructure:"career_goals"`
	Certifications     string `json:"certifications,omitempty" mapstructure:"certifications"`
	Projects           string `json:"projects,omitempty" mapstructure:"projects"`
}

// ValidationError reports a profile that is missing required fields. It is
// surfaced to callers as a request rejection before any ranking work begins.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid candidate profile: missing required fields: %s", strings.Join(e.Fields, ", "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FromMap decodes an arbitrary candidate-attribute mapping into a Profile.
// Unknown keys are ignored; scalar values are weakly coerced to strings.
func FromMap(attrs map[string]any) (*Profile, error) {
	var p Profile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("building profile decoder: %w", err)
	}

	if err := decoder.Decode(attrs); err != nil {
		return nil, fmt.Errorf("decoding candidate attributes: %w", err)
	}

	return &p, nil
}

// Validate checks the request-validation contract: name, education and
// skills are required, everything else is optional.
func (p *Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, verr := range verrs {
		fields = append(fields, strings.ToLower(verr.Field()))
	}

	return &ValidationError{Fields: fields}
}

// Format renders the fixed-order labeled profile block used as the
// similarity query. Absent fields become a literal "N/A" so field order and
// presence signaling stay consistent for the vectorizer. The rendering is
// deterministic: identical profiles produce byte-identical output.
func (p *Profile) Format() string {
	var b strings.Builder
	b.WriteString("CANDIDATE PROFILE:")

	write := func(label, value string) {
		b.WriteString("\n")
		b.WriteString(label)
		b.WriteString(": ")
		if value = strings.TrimSpace(value); value == "" {
			value = "N/A"
		}
		b.WriteString(value)
	}

	write("Name", p.Name)
	write("Education", p.Education)
	write("Skills", p.Skills)
	write("Experience", p.Experience)
	write("Interests", p.Interests)
	write("Location Preference", p.LocationPreference)
	write("Career Goals", p.CareerGoals)
	write("Certifications", p.Certifications)
	write("Projects", p.Projects)

	return b.String()
}

// SkillList returns the candidate's skills lower-cased and trimmed for
// matching against posting requirements.
func (p *Profile) SkillList() []string {
	parts := strings.Split(strings.ToLower(p.Skills), ",")
	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}
