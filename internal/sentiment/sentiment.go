// Package sentiment classifies free-text feedback descriptions into
// sentiment tags.
//
// The inbound webhook accepts an optional sentiment field; when it is
// absent or invalid, a Classifier fills it in. The default classifier is
// keyword-based and deterministic. An optional Claude-backed classifier
// can be enabled through configuration; it falls back to the keyword rules
// whenever the API call fails, so classification never errors out.
package sentiment

import (
	"context"
	"strings"

	"github.com/feedbackpulse/pulse/internal/model"
)

// Classifier assigns a sentiment to a feedback description.
type Classifier interface {
	Classify(ctx context.Context, description string) model.Sentiment
}

// Keyword is a deterministic keyword-based classifier. The keyword lists
// match the heuristics used by the demo data generator, so classified and
// seeded feedback agree on what reads as positive or negative.
type Keyword struct{}

var positiveMarkers = []string{"excelente", "ótimo", "ótima", "melhorou", "atencioso"}

var negativeMarkers = []string{"falta", "demora", "buraco", "assalto", "sem água", "esgoto", "insegurança"}

// Classify implements Classifier. Unmatched text is neutral.
func (Keyword) Classify(_ context.Context, description string) model.Sentiment {
	text := strings.ToLower(description)
	for _, kw := range positiveMarkers {
		if strings.Contains(text, kw) {
			return model.SentimentPositive
		}
	}
	for _, kw := range negativeMarkers {
		if strings.Contains(text, kw) {
			return model.SentimentNegative
		}
	}
	return model.SentimentNeutral
}
