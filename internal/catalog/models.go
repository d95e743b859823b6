package catalog

import "encoding/json"

// Metadata is the NEP-177 token metadata a template carries.
type Metadata struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Media       string      `json:"media,omitempty"`
	MediaHash   string      `json:"media_hash,omitempty"`
	Copies      *uint64     `json:"copies,omitempty"`
	IssuedAt    json.Number `json:"issued_at,omitempty"`
	Extra       string      `json:"extra,omitempty"`
	Reference   string      `json:"reference,omitempty"`
}

// Template is a donation category together with its metadata.
type Template struct {
	TemplateID string   `json:"template_id"`
	Metadata   Metadata `json:"metadata"`
}

// CreateTemplateRequest mirrors the generate_template arguments.
type CreateTemplateRequest struct {
	TemplateID  string `json:"template_id" validate:"required,max=64"`
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=1024"`
	Media       string `json:"media" validate:"omitempty,url"`
}

// View is what the asset-creation page renders.
type View struct {
	Templates          map[string]Template `json:"templates"`
	DonationCandidates map[string]string   `json:"donation_candidates"`
}

type generateTemplateArgs struct {
	TemplateID string   `json:"template_id"`
	Metadata   Metadata `json:"metadata"`
}
