package script

import (
	"regexp"
	"strings"

	"github.com/podforge/podforge-api/internal/models"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

var (
	// "Host A: text", "Alex: text" — a label is at most two short words
	// before a colon (ASCII or fullwidth), so prose containing a colon
	// mid-sentence is not mistaken for one.
	speakerLineRe = regexp.MustCompile(`^\s*([\p{L}\p{N}][\p{L}\p{N}.'-]{0,15}(?: [\p{L}\p{N}.'-]{1,15})?)\s*[:：]\s*(.+)$`)

	// Leading parenthesized or bracketed stage direction: "(pause) text"
	stageDirectionRe = regexp.MustCompile(`^\s*[(\[（]([^)\]）]{1,60})[)\]）]\s*`)

	markupLineRe = regexp.MustCompile(`^\s*(#{1,6}\s|[-*]{3,}\s*$)`)
)

// parseScript turns the generator's response into an ordered, densely
// indexed sequence of turns. Lines that carry a "Speaker:" label keep that
// label; unlabeled dialogue lines fall back to the two default hosts,
// alternating by line parity. Fenced code blocks and markdown markup are
// discarded, and a response with no labeled line and fewer than two
// dialogue lines is rejected as a ScriptParseError so the composer can
// regenerate instead of shipping a non-script response.
func parseScript(raw string) ([]models.ScriptTurn, error) {
	type scriptLine struct {
		speaker string
		text    string
	}

	var lines []scriptLine
	labeled := 0
	inFence := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence || line == "" || markupLineRe.MatchString(line) {
			continue
		}

		speaker, text := splitSpeakerLine(line)
		if speaker != "" {
			labeled++
		} else {
			text = line
		}
		lines = append(lines, scriptLine{speaker: speaker, text: text})
	}

	// A lone unlabeled line is not a conversation: it is usually a refusal
	// or a summary sentence the generator emitted instead of dialogue.
	if labeled == 0 && len(lines) < 2 {
		return nil, apperrors.ScriptParseError("no well-formed dialogue turn in response")
	}

	var turns []models.ScriptTurn
	nextDefault := 0

	for _, sl := range lines {
		speaker := sl.speaker
		if speaker == "" {
			// Unlabeled line: alternate the default hosts per the
			// requested A→B→A→B line format
			if nextDefault%2 == 0 {
				speaker = SpeakerHostA
			} else {
				speaker = SpeakerHostB
			}
		}
		nextDefault++

		text := sl.text
		direction := ""
		if m := stageDirectionRe.FindStringSubmatch(text); m != nil {
			direction = strings.TrimSpace(m[1])
			text = strings.TrimSpace(text[len(m[0]):])
		}
		if text == "" {
			continue
		}

		turns = append(turns, models.ScriptTurn{
			Index:          len(turns),
			Speaker:        speaker,
			Text:           text,
			StageDirection: direction,
		})
	}

	if len(turns) == 0 {
		return nil, apperrors.ScriptParseError("no well-formed dialogue turn in response")
	}
	return turns, nil
}

func splitSpeakerLine(line string) (speaker, text string) {
	m := speakerLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", ""
	}
	speaker = strings.TrimSpace(m[1])
	text = strings.TrimSpace(m[2])
	if speaker == "" || text == "" {
		return "", ""
	}
	return speaker, text
}
