package service

import (
	"encoding/json"

	"github.com/leaps-program/leaps-api/internal/models"
)

// Per-trainee point weights for the Amplify stage.
const (
	amplifyPointsPerPeer    = 2
	amplifyPointsPerStudent = 1
)

// ComputePoints returns the deterministic base score for an approved
// submission. Pure over (activity, payload); reviewers may adjust the result
// within a bounded band, never replace the function.
func ComputePoints(code models.ActivityCode, payload map[string]interface{}) int {
	def, ok := models.ActivityByCode(code)
	if !ok {
		return 0
	}

	switch code {
	case models.ActivityAmplify:
		peers := payloadInt(payload, "peers_trained")
		students := payloadInt(payload, "students_trained")
		return amplifyPointsPerPeer*peers + amplifyPointsPerStudent*students
	case models.ActivityLearn, models.ActivityExplore, models.ActivityPresent, models.ActivityShine:
		return def.DefaultPoints
	default:
		return def.DefaultPoints
	}
}

// MaxAdjustment returns the widest permitted deviation from the base score:
// ceil(20% of base).
func MaxAdjustment(basePoints int) int {
	if basePoints <= 0 {
		return 0
	}
	return (basePoints + 4) / 5
}

// payloadInt reads a non-negative integer quantity from a JSON payload field.
// JSON numbers decode as float64; stored payloads may round-trip through
// json.Number as well.
func payloadInt(payload map[string]interface{}, key string) int {
	if payload == nil {
		return 0
	}
	value, ok := payload[key]
	if !ok {
		return 0
	}

	var n int
	switch v := value.(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		if parsed, err := v.Int64(); err == nil {
			n = int(parsed)
		}
	}

	if n < 0 {
		return 0
	}
	return n
}
