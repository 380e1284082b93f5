package assistant

import (
	"fmt"
	"regexp"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/pkg/normalize"
)

// patternTableVersion tags the hand-authored pattern set below. Bump when a
// family is added or reweighted so classification changes stay traceable in
// the reasoning field.
const patternTableVersion = "v2"

// confidenceGate is the threshold above which a message triggers an
// automatic side effect. False positives mutate data, false negatives only
// make the user rephrase, so the gate stays high.
const confidenceGate = 0.95

// intentPattern is one scored pattern family. Patterns match against folded
// text (lowercased, accents stripped, punctuation collapsed), so they are
// written without diacritics.
type intentPattern struct {
	re     *regexp.Regexp
	intent entities.IntentType
	weight float64
	label  string
}

var taskPatterns = []intentPattern{
	// Explicit imperative phrasing, the strongest signal
	{regexp.MustCompile(`\b(ajoute|ajouter|cree|creer|crees)\s+(une?\s+)?(tache|todo|action)\b`), entities.IntentTaskCreation, 0.9, "explicit task imperative (fr)"},
	{regexp.MustCompile(`\b(create|add|make)\s+(a\s+)?(task|todo|action item)\b`), entities.IntentTaskCreation, 0.9, "explicit task imperative (en)"},
	// Assignment to a named participant, stricter subset
	{regexp.MustCompile(`\b(assigne|assigner|attribue)\s+.*\ba\s+\w+`), entities.IntentTaskCreation, 0.8, "participant assignment (fr)"},
	{regexp.MustCompile(`\bassign\s+.*\bto\s+\w+`), entities.IntentTaskCreation, 0.8, "participant assignment (en)"},
	// Weak supporting signals, never enough on their own
	{regexp.MustCompile(`\b(tache|todo|action item|deadline)\b`), entities.IntentTaskCreation, 0.4, "task keyword"},
	{regexp.MustCompile(`\b(faire|contacter|preparer|envoyer|finish|contact|prepare|send)\b`), entities.IntentTaskCreation, 0.3, "action verb"},
}

var meetingPointPatterns = []intentPattern{
	{regexp.MustCompile(`\b(ajoute|ajouter|cree|creer)\s+(un\s+)?point\b`), entities.IntentMeetingPoint, 0.9, "explicit agenda imperative (fr)"},
	{regexp.MustCompile(`\b(add|create)\s+(an?\s+)?(agenda\s+point|agenda\s+item)\b`), entities.IntentMeetingPoint, 0.9, "explicit agenda imperative (en)"},
	{regexp.MustCompile(`\b(ordre du jour|agenda)\b`), entities.IntentMeetingPoint, 0.4, "agenda keyword"},
	{regexp.MustCompile(`\b(discuter|aborder|discuss|raise)\b`), entities.IntentMeetingPoint, 0.3, "agenda verb"},
}

// hedgePattern marks soft, non-committal phrasing. A hedged message never
// fires an automatic action no matter which patterns it also matches.
var hedgePattern = regexp.MustCompile(`\b(peut etre|un jour|plus tard|eventuellement|maybe|someday|perhaps|might)\b`)

// PreFilter classifies free text without side effects. Undecidable input
// resolves to normal_query; it never returns an error.
func PreFilter(message string) entities.IntentClassification {
	folded := normalize.Fold(message)
	if folded == "" {
		return normalQuery("empty message")
	}

	if hedgePattern.MatchString(folded) {
		return normalQuery("soft phrasing detected, no automatic action")
	}

	taskScore, taskLabels := score(folded, taskPatterns)
	pointScore, pointLabels := score(folded, meetingPointPatterns)

	if taskScore > confidenceGate && taskScore >= pointScore {
		return entities.IntentClassification{
			Type:             entities.IntentTaskCreation,
			Confidence:       taskScore,
			ExtractedContent: message,
			Reasoning:        fmt.Sprintf("matched %s [%s]", taskLabels, patternTableVersion),
		}
	}
	if pointScore > confidenceGate {
		return entities.IntentClassification{
			Type:             entities.IntentMeetingPoint,
			Confidence:       pointScore,
			ExtractedContent: message,
			Reasoning:        fmt.Sprintf("matched %s [%s]", pointLabels, patternTableVersion),
		}
	}

	return normalQuery(fmt.Sprintf("no explicit pattern above %.2f (task %.2f, agenda %.2f)", confidenceGate, taskScore, pointScore))
}

// score sums the weights of every matching family, capped at 1.0
func score(folded string, patterns []intentPattern) (float64, string) {
	total := 0.0
	labels := ""
	for _, p := range patterns {
		if !p.re.MatchString(folded) {
			continue
		}
		total += p.weight
		if labels != "" {
			labels += ", "
		}
		labels += p.label
	}
	if total > 1.0 {
		total = 1.0
	}
	return total, labels
}

func normalQuery(reasoning string) entities.IntentClassification {
	return entities.IntentClassification{
		Type:       entities.IntentNormalQuery,
		Confidence: 1.0,
		Reasoning:  reasoning,
	}
}
