// Package seed produces the demo dataset used to bootstrap a workspace
// that has no local or remote state yet.
//
// The shape of the data is deterministic (one workspace, fixed regions and
// categories) while the generated feedback collection is randomized. A
// custom profile can be loaded from a TOML file to replace the built-in
// demo values.
package seed

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/feedbackpulse/pulse/internal/model"
)

// Profile describes the canonical seed values: the workspace, its regions
// and categories, the complaint text pools per category, and the region
// weighting applied when generating feedback.
type Profile struct {
	Workspace  model.Workspace     `toml:"workspace"`
	Regions    []model.Region      `toml:"regions"`
	Categories []model.Category    `toml:"categories"`
	Complaints map[string][]string `toml:"complaints"`

	// Weights maps a category name to the region id that receives 60% of
	// that category's feedback. Unlisted categories distribute uniformly.
	Weights map[string]string `toml:"weights"`
}

// BuiltIn returns the default demo profile.
func BuiltIn() *Profile {
	return &Profile{
		Workspace: model.Workspace{
			ID:        "ws-demo",
			Name:      "Campanha Prefeito Silva 2026",
			Slug:      "campanha-silva-2026",
			CreatedAt: time.Now(),
		},
		Regions: []model.Region{
			{ID: "reg-1", WorkspaceID: "ws-demo", Name: "Centro", Color: "blue-500"},
			{ID: "reg-2", WorkspaceID: "ws-demo", Name: "Zona Norte", Color: "red-500"},
			{ID: "reg-3", WorkspaceID: "ws-demo", Name: "Zona Sul", Color: "green-500"},
			{ID: "reg-4", WorkspaceID: "ws-demo", Name: "Zona Leste", Color: "yellow-500"},
			{ID: "reg-5", WorkspaceID: "ws-demo", Name: "Zona Oeste", Color: "purple-500"},
			{ID: "reg-6", WorkspaceID: "ws-demo", Name: "Área Rural", Color: "orange-500"},
		},
		Categories: []model.Category{
			{ID: "cat-1", WorkspaceID: "ws-demo", Name: "Saúde", Icon: "Activity", Color: "rose"},
			{ID: "cat-2", WorkspaceID: "ws-demo", Name: "Emprego", Icon: "Briefcase", Color: "blue"},
			{ID: "cat-3", WorkspaceID: "ws-demo", Name: "Segurança", Icon: "Shield", Color: "slate"},
			{ID: "cat-4", WorkspaceID: "ws-demo", Name: "Educação", Icon: "BookOpen", Color: "indigo"},
			{ID: "cat-5", WorkspaceID: "ws-demo", Name: "Infraestrutura", Icon: "Hammer", Color: "amber"},
		},
		Complaints: map[string][]string{
			"Saúde": {
				"Falta médico no posto de saúde.",
				"Demora para marcar consulta com especialista.",
				"Falta de remédios na farmácia popular.",
				"Atendimento excelente no pronto socorro hoje.",
				"Ambulância demorou para chegar.",
				"Posto de vacinação muito cheio e sem organização.",
				"Médicos atenciosos na UPA.",
			},
			"Emprego": {
				"Falta de oportunidades para jovens.",
				"Precisamos de mais cursos profissionalizantes.",
				"Empresas saindo da região.",
				"Sine não tem vagas atualizadas.",
				"Promessa de emprego na fábrica não cumprida.",
			},
			"Segurança": {
				"Muitos assaltos no ponto de ônibus à noite.",
				"Falta iluminação na praça central.",
				"Policiamento melhorou na última semana.",
				"Sensação de insegurança ao sair da escola.",
				"Precisamos de câmeras de segurança na avenida.",
			},
			"Educação": {
				"Escola sem ventiladores funcionando.",
				"Merenda escolar de baixa qualidade.",
				"Professores faltando muito.",
				"Biblioteca da escola está fechada.",
				"Creche não tem vaga para meu filho.",
			},
			"Infraestrutura": {
				"Buraco enorme na rua principal.",
				"Sem água há dois dias.",
				"Coleta de lixo não passou essa semana.",
				"Esgoto a céu aberto.",
				"Asfalto novo ficou ótimo.",
				"Ponte precisando de reparos urgentes.",
			},
		},
		Weights: map[string]string{
			"Saúde":   "reg-2",
			"Emprego": "reg-3",
		},
	}
}

// LoadProfile reads a seed profile from a TOML file.
//
// Missing sections fall back to the built-in profile, so a file may
// override only the workspace name or only the text pools.
func LoadProfile(path string) (*Profile, error) {
	profile := BuiltIn()
	if _, err := toml.DecodeFile(path, profile); err != nil {
		return nil, fmt.Errorf("failed to load seed profile %s: %w", path, err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed profile %s: %w", path, err)
	}
	return profile, nil
}

// Validate checks the profile for the minimum viable shape.
func (p *Profile) Validate() error {
	if err := p.Workspace.Validate(); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if len(p.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	if len(p.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	for i := range p.Regions {
		p.Regions[i].WorkspaceID = p.Workspace.ID
		if err := p.Regions[i].Validate(); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	for i := range p.Categories {
		p.Categories[i].WorkspaceID = p.Workspace.ID
		if err := p.Categories[i].Validate(); err != nil {
			return fmt.Errorf("category %d: %w", i, err)
		}
	}
	return nil
}
