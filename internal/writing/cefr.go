package writing

import "github.com/example/englearn/pkg/models"

type cefrBand struct {
	below  int // exclusive upper bound, 0 for the open top band
	level  models.CEFRLevel
	reason string
}

// Evaluated top-down, first match wins.
var cefrBands = []cefrBand{
	{20, models.CEFRA1, "Very basic text with significant errors."},
	{40, models.CEFRA2, "Simple text with frequent errors."},
	{60, models.CEFRB1, "Coherent ideas but noticeable errors."},
	{80, models.CEFRB2, "Complex ideas with some errors."},
	{95, models.CEFRC1, "Fluent text with minor errors."},
	{0, models.CEFRC2, "Near-native fluency with minimal errors."},
}

// MapCEFR assigns a proficiency band to a total score. Only the top band
// carries extra notes about length, grammar and style.
func MapCEFR(score, wordCount, grammarScore, styleScore int) (models.CEFRLevel, []string) {
	for _, band := range cefrBands {
		if band.below != 0 && score >= band.below {
			continue
		}
		reasons := []string{band.reason}
		if band.level != models.CEFRC2 {
			return band.level, reasons
		}
		if wordCount < minWords {
			reasons = append(reasons, "Text too short - aim for 50+ words.")
		}
		if grammarScore < 70 {
			reasons = append(reasons, "Work on grammar accuracy.")
		}
		if styleScore < 70 {
			reasons = append(reasons, "Improve style.")
		}
		return band.level, reasons
	}
	// unreachable: the last band is open
	return models.CEFRC2, nil
}
