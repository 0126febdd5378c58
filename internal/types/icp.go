// Package types provides type definitions for structured data used throughout the prospect-scorer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"sort"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every Validate method; a *validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New()

// ICP represents an Ideal Customer Profile: the target company archetype for a business.
// ICPs are created upstream once per discovery job and are read-only here.
type ICP struct {
	ID              string              `json:"id" validate:"required"`
	JobID           string              `json:"job_id,omitempty"`
	CompanyName     string              `json:"company_name,omitempty"`
	Industry        string              `json:"industry" validate:"required"`
	SubIndustries   []string            `json:"sub_industries,omitempty"`
	Firmographics   Firmographics       `json:"firmographics"`
	ValueProps      []string            `json:"value_props,omitempty"`
	PainPoints      []string            `json:"pain_points,omitempty"`
	TriggerEvents   []string            `json:"trigger_events,omitempty"`
	TechStack       map[string][]string `json:"tech_stack,omitempty"`       // category -> technologies
	TargetLocations []string            `json:"target_locations,omitempty"` // Empty means no geographic constraint
	EmbeddingID     *string             `json:"embedding_id,omitempty"`
}

// Firmographics holds the optional company-size bands of an ICP.
type Firmographics struct {
	EmployeeRange string `json:"employee_range,omitempty"` // e.g. "51-200"
	RevenueRange  string `json:"revenue_range,omitempty"`  // e.g. "$10M-$50M"
}

// Technologies returns every technology named in the tech stack, in category order.
func (i *ICP) Technologies() []string {
	if len(i.TechStack) == 0 {
		return nil
	}
	categories := make([]string, 0, len(i.TechStack))
	for category := range i.TechStack {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var techs []string
	for _, category := range categories {
		techs = append(techs, i.TechStack[category]...)
	}
	return techs
}

// Validate validates the ICP using the validator.
func (i *ICP) Validate() error {
	return validate.Struct(i)
}
