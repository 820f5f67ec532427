package script

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/podforge/podforge-api/internal/models"
)

// Default speaker labels requested from the generator. The parser falls
// back to these when the provider drops the labels.
const (
	SpeakerHostA = "Host A"
	SpeakerHostB = "Host B"
)

// buildEvidence renders the source documents into the evidence block.
// Primary sources come first with [n] tags and a large per-source budget;
// supplementary sources follow with [S n] tags and a small one.
func (s *Service) buildEvidence(docs []models.SourceDocument) string {
	var primary, supplementary []models.SourceDocument
	for _, d := range docs {
		if d.Primary {
			primary = append(primary, d)
		} else {
			supplementary = append(supplementary, d)
		}
	}

	var b strings.Builder
	remaining := s.opts.TotalBudgetChars

	for i, d := range primary {
		body := cleanEvidence(d.Text, min(s.opts.PrimaryBudgetChars, remaining))
		if body == "" {
			continue
		}
		remaining -= len(body)
		fmt.Fprintf(&b, "[%d] Title: %s\nSource: %s\nContent: %s\n\n", i+1, d.Title, d.URL, body)
		if remaining <= 0 {
			return strings.TrimSpace(b.String())
		}
	}

	if len(supplementary) > 0 && remaining > 0 {
		b.WriteString("[Supplementary material]\n")
		for i, d := range supplementary {
			body := cleanEvidence(d.Text, min(s.opts.SupplementaryBudgetChars, remaining))
			if body == "" {
				continue
			}
			remaining -= len(body)
			fmt.Fprintf(&b, "[S%d] Title: %s\nSource: %s\nContent: %s\n\n", i+1, d.Title, d.URL, body)
			if remaining <= 0 {
				break
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// cleanEvidence truncates to the budget and strips non-printable characters
func cleanEvidence(text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if len(text) > budget {
		text = text[:budget]
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func (s *Service) systemPrompt(style models.StyleDirectives) string {
	if isEnglish(style.Language) {
		return "You are an experienced podcast scriptwriter who creates natural, " +
			"information-rich two-person dialogue scripts. Every line of your output is " +
			"exactly one utterance in the form \"Speaker: text\" with no markdown, " +
			"no structural notes, and no empty speakers."
	}
	return fmt.Sprintf("You are an experienced podcast scriptwriter writing in %s. "+
		"You create natural, information-rich two-person dialogue scripts. Every line of "+
		"your output is exactly one utterance in the form \"Speaker: text\" with no "+
		"markdown, no structural notes, and no empty speakers.", languageName(style.Language))
}

// userPrompt assembles the generation request: role setup, duration hint,
// grounding rules over the evidence block, and the output format contract.
func (s *Service) userPrompt(subject string, docs []models.SourceDocument, style models.StyleDirectives) string {
	evidence := s.buildEvidence(docs)

	minutes := style.TargetMinutes
	if minutes <= 0 {
		minutes = s.opts.DefaultTargetMinutes
	}

	tone := strings.TrimSpace(style.Tone)
	if tone == "" {
		tone = "engaging and conversational"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a two-person dialogue podcast script about: %s\n\n", subject)

	fmt.Fprintf(&b, "[Duration]\n- Target length: about %d minutes (a length hint, not a hard limit)\n\n", minutes)

	fmt.Fprintf(&b, "[Characters]\n"+
		"- %s (expert): knowledgeable, analytical, explains terms when used\n"+
		"- %s (guide): curious, asks questions, summarizes for the audience\n\n",
		SpeakerHostA, SpeakerHostB)

	fmt.Fprintf(&b, "[Style]\n- Tone: %s\n- Natural spoken language, real back-and-forth between the hosts\n\n", tone)

	b.WriteString("[Grounding]\n" +
		"- Every key fact must come from the evidence below, cited with its tag\n" +
		"- Primary material ([1], [2], ...) is the main content source; cite each at least once\n" +
		"- Supplementary material ([S1], [S2], ...) only fills gaps, never leads\n" +
		"- Never invent facts or numbers\n\n")

	fmt.Fprintf(&b, "[Evidence]\n%s\n\n", evidence)

	b.WriteString("[Output format]\n" +
		"- One utterance per line, exactly: Speaker: text\n" +
		"- Speakers alternate; use only the two characters above\n" +
		"- No markdown, no headings, no structural notes like \"(intro)\"\n" +
		"- The dialogue must have a clear opening and a clear closing\n")

	if isEnglish(style.Language) {
		b.WriteString("- Write the entire script in English\n")
	} else if style.Language != "" {
		fmt.Fprintf(&b, "- Write the entire script in %s\n", languageName(style.Language))
	}

	return b.String()
}

// strictFormatInstruction is appended on regeneration after a parse failure
const strictFormatInstruction = "\nIMPORTANT: the previous response could not be parsed. " +
	"Output ONLY dialogue lines in the exact form \"Speaker: text\", one per line. " +
	"No blank speakers, no commentary, no formatting of any other kind."

func isEnglish(language string) bool {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "en", "en-us", "en-gb", "english":
		return true
	}
	return false
}

func languageName(code string) string {
	if code == "" {
		return "English"
	}
	return code
}
