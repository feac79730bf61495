package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "Eres un asistente de toma de decisiones con la metodología Choosing By Advantages (CBA). " +
	"Usa solo los datos del JSON entregado (alternativa, costo, ventaja total, ratio). " +
	"El ganador ya fue calculado por el sistema y no debe cambiarse. " +
	"Redacta un resumen breve, directo y numérico, siempre en español."

const userInstructions = "Redacta UNA SOLA ORACIÓN completa, en una línea, usando solo el JSON.\n" +
	"Estilo: sin etiquetas tipo 'Recomendación:' ni campos 'ratio:', 'total:', 'costo:' ni nombres de variables; " +
	"usa conectores como 'por lo que', 'porque', 'frente a', 'aunque'. Si falta un dato, omítelo.\n" +
	"Contenido: proyecto y objetivo si existen; la alternativa recomendada (exactamente computed.winner.name) " +
	"y por qué (menor costo por unidad de ventaja) con costo por unidad, ventaja total y costo; " +
	"la comparación frente a la segunda alternativa con computed.delta_ratio y computed.delta_pct si existen.\n" +
	"Máximo 420 caracteres.\n\nJSON:\n"

type computed struct {
	Winner     *candidate `json:"winner"`
	Second     *candidate `json:"second"`
	DeltaRatio *float64   `json:"delta_ratio"`
	DeltaPct   *float64   `json:"delta_pct"`
	Alerts     []string   `json:"alerts"`
}

type promptPayload struct {
	Setup     map[string]interface{} `json:"setup"`
	Dashboard []candidate            `json:"dashboard"`
	Computed  computed               `json:"computed"`
}

// alerts lists data gaps the summary should not paper over.
func alerts(setup map[string]interface{}, cs []candidate) []string {
	out := []string{}
	var noCost, noRatio []string
	for _, c := range cs {
		if c.Cost == nil {
			noCost = append(noCost, c.Name)
		}
		if c.Ratio == nil {
			noRatio = append(noRatio, c.Name)
		}
	}
	if len(noCost) > 0 {
		out = append(out, fmt.Sprintf("Costos faltantes en: %s.", strings.Join(noCost, ", ")))
	}
	if len(noRatio) > 0 {
		out = append(out, fmt.Sprintf("Ratio no calculable en: %s.", strings.Join(noRatio, ", ")))
	}
	if setup != nil {
		if setupString(setup, "reference_budget") == "" {
			out = append(out, "El presupuesto de referencia está vacío.")
		}
		switch strings.ToUpper(setupString(setup, "sector")) {
		case "PUBLICO":
			if setupString(setup, "public_entity") == "" {
				out = append(out, "No se especifica la entidad pública solicitante.")
			}
		case "PRIVADO":
			if setupString(setup, "private_company") == "" {
				out = append(out, "No se especifica la empresa privada solicitante.")
			}
		}
	}
	return out
}

// buildMessages returns the system and user messages for one summary request.
func buildMessages(setup map[string]interface{}, cs []candidate) ([]Message, error) {
	winner, second := ranking(cs)
	c := computed{Winner: winner, Second: second, Alerts: alerts(setup, cs)}
	if winner != nil && second != nil {
		d := *second.Ratio - *winner.Ratio
		c.DeltaRatio = &d
		if *second.Ratio > 0 {
			p := d / *second.Ratio * 100
			c.DeltaPct = &p
		}
	}
	body, err := json.Marshal(promptPayload{Setup: setup, Dashboard: cs, Computed: c})
	if err != nil {
		return nil, fmt.Errorf("encode prompt payload: %w", err)
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userInstructions + string(body)},
	}, nil
}
