package types

// Persona represents a buyer persona derived from exactly one ICP.
type Persona struct {
	ID          string   `json:"id" validate:"required"`
	ICPID       string   `json:"icp_id" validate:"required"`
	PersonaName string   `json:"persona_name,omitempty"`
	Titles      []string `json:"titles"` // Ordered; earlier titles win ties
	Goals       []string `json:"goals,omitempty"`
	Pains       []string `json:"pains,omitempty"`
	KPIs        []string `json:"kpis,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Locations   []string `json:"locations,omitempty"` // Optional geographic constraint
}

// Validate validates the Persona using the validator.
func (p *Persona) Validate() error {
	return validate.Struct(p)
}
