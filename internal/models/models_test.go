package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Stage
		to   Stage
		want bool
	}{
		{"queued to acquiring", StageQueued, StageAcquiring, true},
		{"acquiring to composing", StageAcquiring, StageComposing, true},
		{"composing to assigning", StageComposing, StageAssigningVoices, true},
		{"assigning to synthesizing", StageAssigningVoices, StageSynthesizing, true},
		{"synthesizing to assembling", StageSynthesizing, StageAssembling, true},
		{"assembling to publishing", StageAssembling, StagePublishing, true},
		{"publishing to completed", StagePublishing, StageCompleted, true},
		{"any stage to failed", StageSynthesizing, StageFailed, true},
		{"no skipping stages", StageQueued, StageSynthesizing, false},
		{"no going backwards", StageAssembling, StageComposing, false},
		{"no re-entry from completed", StageCompleted, StageAcquiring, false},
		{"no leaving failed", StageFailed, StageQueued, false},
		{"failed cannot fail again", StageFailed, StageFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, StageCompleted.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageQueued.Terminal())
	assert.False(t, StagePublishing.Terminal())
}

func TestGenerationRequestRoundTrip(t *testing.T) {
	req := &GenerationRequest{
		Kind:    InputKindTopic,
		Payload: "the history of container shipping",
		Style: StyleDirectives{
			Language:      "en",
			TargetMinutes: 12,
			Tone:          "curious",
			MusicStyle:    "ambient",
		},
	}

	payload, err := PayloadFromGenerationRequest(req)
	require.NoError(t, err)

	job := &Job{Request: payload}
	decoded, err := job.GenerationRequest()
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestGenerationRequestRejectsUnknownKind(t *testing.T) {
	job := &Job{Request: JobPayload{"kind": "carrier-pigeon", "payload": "x"}}
	_, err := job.GenerationRequest()
	assert.Error(t, err)
}

func TestInputKindValid(t *testing.T) {
	assert.True(t, InputKindTopic.Valid())
	assert.True(t, InputKindText.Valid())
	assert.False(t, InputKind("").Valid())
	assert.False(t, InputKind("audio").Valid())
}

func TestVoiceAssignmentLookup(t *testing.T) {
	a := VoiceAssignment{Voices: map[string]VoiceIdentity{
		"A": {ID: "voice-1", Name: "Aaron"},
	}}

	v, ok := a.VoiceFor("A")
	assert.True(t, ok)
	assert.Equal(t, "voice-1", v.ID)

	_, ok = a.VoiceFor("B")
	assert.False(t, ok)
}
