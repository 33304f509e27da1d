package deepseek

import (
	"encoding/json"
	"fmt"
)

const scoringSystemPrompt = "Eres un experto en evaluar clips de sermones para redes sociales. " +
	"Criterios de evaluacion (0-100): " +
	"1. HOOK (0-25): captura atencion en los primeros segundos. " +
	"2. CLARIDAD (0-25): se entiende sin contexto previo. " +
	"3. APLICABILIDAD (0-25): relevante para la vida diaria. " +
	"4. EMOCION (0-25): genera respuesta emocional. " +
	"Prioriza clips que sean autonomos, con conclusion clara, " +
	"compartibles en redes sociales y conecten emocionalmente. " +
	"Devuelve SOLO JSON (sin markdown) como una lista de objetos con: " +
	"id, score (0-100), reason, y opcional trim_suggestion " +
	"(start_offset_sec, end_offset_sec, confidence). " +
	"Los offsets son segundos a recortar desde inicio y fin (>=0), " +
	"confidence es de 0 a 1. " +
	"Si sugieres recortes, mantenlos pequenos y evita cortar palabras."

func scoringUserPrompt(candidates []Candidate) (string, error) {
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Candidates JSON:\n%s\n\nReturn a JSON array with one entry per candidate id.",
		encoded,
	), nil
}
