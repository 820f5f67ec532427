package models

import (
	"time"
)

// InputKind identifies how a generation request supplies its source material
type InputKind string

const (
	InputKindTopic    InputKind = "topic"
	InputKindURL      InputKind = "url"
	InputKindDocument InputKind = "document"
	InputKindText     InputKind = "text"
)

// Valid reports whether the kind is one of the supported input kinds
func (k InputKind) Valid() bool {
	switch k {
	case InputKindTopic, InputKindURL, InputKindDocument, InputKindText:
		return true
	}
	return false
}

// StyleDirectives carries the optional advisory style hints for a job.
// TargetMinutes is a length hint passed to the script provider; it is
// never enforced by trimming generated content.
type StyleDirectives struct {
	Language      string `json:"language,omitempty"`
	TargetMinutes int    `json:"target_minutes,omitempty"`
	Tone          string `json:"tone,omitempty"`
	MusicStyle    string `json:"music_style,omitempty"`
}

// GenerationRequest is the input spec of one end-to-end podcast job
type GenerationRequest struct {
	Kind    InputKind       `json:"kind"`
	Payload string          `json:"payload"`
	Style   StyleDirectives `json:"style"`
}

// DocumentOrigin identifies how a source document was acquired
type DocumentOrigin string

const (
	OriginSearchResult DocumentOrigin = "search_result"
	OriginFetchedURL   DocumentOrigin = "fetched_url"
	OriginUploadedFile DocumentOrigin = "uploaded_file"
)

// SourceDocument is one unit of acquired raw text. Immutable once created.
type SourceDocument struct {
	Origin     DocumentOrigin `json:"origin"`
	Title      string         `json:"title"`
	URL        string         `json:"url,omitempty"`
	Text       string         `json:"text"`
	Primary    bool           `json:"primary"`
	Confidence float64        `json:"confidence"`
	AcquiredAt time.Time      `json:"acquired_at"`
}

// ScriptTurn is one utterance of the dialogue. Index values are 0-based,
// dense, and strictly increasing across a script.
type ScriptTurn struct {
	Index          int    `json:"index"`
	Speaker        string `json:"speaker"`
	Text           string `json:"text"`
	StageDirection string `json:"stage_direction,omitempty"`
}

// VoiceIdentity is one concrete voice from the configured pool
type VoiceIdentity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
}

// VoiceAssignment maps speaker labels to voice identities. Two labels may
// share a voice; a label's voice never changes within a job.
type VoiceAssignment struct {
	Voices map[string]VoiceIdentity `json:"voices"`
}

// VoiceFor resolves the voice for a speaker label
func (a VoiceAssignment) VoiceFor(speaker string) (VoiceIdentity, bool) {
	v, ok := a.Voices[speaker]
	return v, ok
}

// SynthesisStatus describes the terminal state of one segment's synthesis
type SynthesisStatus string

const (
	SynthesisPending   SynthesisStatus = "pending"
	SynthesisSucceeded SynthesisStatus = "succeeded"
	SynthesisFailed    SynthesisStatus = "failed"
)

// AudioSegment is the rendered speech for exactly one script turn
type AudioSegment struct {
	Index      int             `json:"index"`
	Speaker    string          `json:"speaker"`
	Audio      []byte          `json:"-"`
	DurationMs int64           `json:"duration_ms"`
	Status     SynthesisStatus `json:"status"`
}

// TimelineEntry records where one segment sits in the final audio
type TimelineEntry struct {
	Index         int    `json:"index"`
	Speaker       string `json:"speaker"`
	StartOffsetMs int64  `json:"start_offset_ms"`
	DurationMs    int64  `json:"duration_ms"`
}

// PodcastArtifact is the final output of a successful job
type PodcastArtifact struct {
	Audio      []byte          `json:"-"`
	DurationMs int64           `json:"duration_ms"`
	Timeline   []TimelineEntry `json:"timeline"`
	MusicTrack string          `json:"music_track"`
	Transcript string          `json:"transcript"`
	AudioURL   string          `json:"audio_url,omitempty"`
	TextURL    string          `json:"transcript_url,omitempty"`
}
