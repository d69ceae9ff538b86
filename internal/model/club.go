package model

import "time"

// Club is an authoritative club record in the federation registry.
type Club struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Website       string    `json:"website,omitempty"`
	LogoURL       string    `json:"logo_url,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	ContactRole   string    `json:"contact_role,omitempty"`
	Zone          string    `json:"zone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ClubPatch holds a partial contact-field update for a club. Empty fields
// are left unchanged.
type ClubPatch struct {
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Website       string `json:"website,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	ContactRole   string `json:"contact_role,omitempty"`
}

// IsEmpty reports whether the patch carries no field changes.
func (p ClubPatch) IsEmpty() bool {
	return p == ClubPatch{}
}
