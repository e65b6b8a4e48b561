package agents

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Definition is the front-matter contract the external assistant host
// consumes. The markdown body is an instruction prompt for that host; it is
// carried verbatim and never interpreted here.
type Definition struct {
	Name        string   `yaml:"name" validate:"required,max=64,agent_name"`
	Description string   `yaml:"description" validate:"required"`
	Model       string   `yaml:"model" validate:"omitempty,max=64"`
	Color       string   `yaml:"color" validate:"omitempty,oneof=red orange yellow green blue purple pink cyan"`
	Tools       []string `yaml:"tools" validate:"omitempty,dive,required"`

	// Prompt and Path are filled by the loader, not by front matter.
	Prompt string `yaml:"-"`
	Path   string `yaml:"-"`
}

var agentNameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("agent_name", func(fl validator.FieldLevel) bool {
		return agentNameRe.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("registering agent_name validation: %w", err)
	}
	return v, nil
}
