package techsheet

import (
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

type sheetSection struct {
	name   string
	fields []string
}

var sheetSections = []sheetSection{
	{"motor", []string{"tipo", "cilindrada_cm3", "combustivel", "potencia_cv_etanol", "potencia_cv_gasolina",
		"torque_kgfm_etanol", "torque_kgfm_gasolina", "velocidade_maxima_km_h", "aceleracao_0_100_s"}},
	{"transmissao", []string{"tipo", "marchas", "tracao"}},
	{"suspensao", []string{"dianteira", "traseira"}},
	{"freios", []string{"dianteiros", "traseiros"}},
	{"dimensoes", []string{"comprimento_mm", "largura_mm", "altura_mm", "entre_eixos_mm"}},
	{"pneus", []string{"medida", "roda_aro"}},
	{"capacidades", []string{"tanque_combustivel_l", "porta_malas_l"}},
	{"bateria", []string{"tensao_v", "capacidade_ah", "cca_a", "polaridade"}},
}

// SheetSchema is the response schema of a technical sheet: one object per
// section, every leaf a string.
func SheetSchema() *genai.Schema {
	root := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(sheetSections)),
	}
	for _, section := range sheetSections {
		s := &genai.Schema{
			Type:             genai.TypeObject,
			Properties:       make(map[string]*genai.Schema, len(section.fields)),
			PropertyOrdering: section.fields,
		}
		for _, f := range section.fields {
			s.Properties[f] = &genai.Schema{Type: genai.TypeString}
		}
		root.Properties[section.name] = s
		root.PropertyOrdering = append(root.PropertyOrdering, section.name)
	}
	return root
}

// ParseSchema decodes a client supplied schema such as
// {"type":"OBJECT","properties":{...}}. Empty input yields nil.
func ParseSchema(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s genai.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &s, nil
}
