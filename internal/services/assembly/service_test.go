package assembly

import (
	"testing"
	"time"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 24000

func speechSegment(index int, speaker string, d time.Duration) models.AudioSegment {
	clip := audio.Silence(testRate, d)
	// Non-zero samples so music mixing is observable
	for i := range clip.Samples {
		clip.Samples[i] = 2000
	}
	return models.AudioSegment{
		Index:      index,
		Speaker:    speaker,
		Audio:      audio.EncodeWAV(clip),
		DurationMs: clip.DurationMs(),
		Status:     models.SynthesisSucceeded,
	}
}

func fourTurnSegments() []models.AudioSegment {
	return []models.AudioSegment{
		speechSegment(0, "Host A", 1*time.Second),
		speechSegment(1, "Host B", 500*time.Millisecond),
		speechSegment(2, "Host A", 750*time.Millisecond),
		speechSegment(3, "Host B", 250*time.Millisecond),
	}
}

func TestAssembleDurationAndTimeline(t *testing.T) {
	svc := NewService(nil, Options{InterTurnPause: 200 * time.Millisecond, SampleRate: testRate})

	artifact, err := svc.Assemble(fourTurnSegments(), "")

	require.NoError(t, err)
	// Sum of segments plus three inter-turn pauses
	assert.Equal(t, int64(1000+500+750+250+3*200), artifact.DurationMs)

	require.Len(t, artifact.Timeline, 4)
	assert.Equal(t, int64(0), artifact.Timeline[0].StartOffsetMs)
	assert.Equal(t, int64(1200), artifact.Timeline[1].StartOffsetMs)
	assert.Equal(t, int64(1900), artifact.Timeline[2].StartOffsetMs)
	assert.Equal(t, int64(2850), artifact.Timeline[3].StartOffsetMs)
	assert.Equal(t, "Host B", artifact.Timeline[1].Speaker)
	assert.Equal(t, int64(500), artifact.Timeline[1].DurationMs)
}

func TestAssembleIsDeterministic(t *testing.T) {
	music := map[string]*audio.Clip{"ambient": audio.Silence(testRate, 300*time.Millisecond)}
	svc := NewService(music, Options{SampleRate: testRate})

	first, err := svc.Assemble(fourTurnSegments(), "ambient")
	require.NoError(t, err)
	second, err := svc.Assemble(fourTurnSegments(), "ambient")
	require.NoError(t, err)

	assert.Equal(t, first.Audio, second.Audio)
	assert.Equal(t, first.Timeline, second.Timeline)
	assert.Equal(t, first.DurationMs, second.DurationMs)
}

func TestAssembleSortsByIndex(t *testing.T) {
	segments := fourTurnSegments()
	segments[0], segments[3] = segments[3], segments[0]

	svc := NewService(nil, Options{SampleRate: testRate})
	artifact, err := svc.Assemble(segments, "")

	require.NoError(t, err)
	for i, entry := range artifact.Timeline {
		assert.Equal(t, i, entry.Index)
	}
}

func TestAssembleMixesMusicBed(t *testing.T) {
	bed := audio.Silence(testRate, 100*time.Millisecond)
	for i := range bed.Samples {
		bed.Samples[i] = 10000
	}
	svc := NewService(map[string]*audio.Clip{"calm": bed}, Options{SampleRate: testRate, MusicGainDB: -15})

	artifact, err := svc.Assemble(fourTurnSegments(), "calm")
	require.NoError(t, err)
	assert.Equal(t, "calm", artifact.MusicTrack)

	mixed, err := audio.DecodeWAV(artifact.Audio)
	require.NoError(t, err)
	// Music is present but well under the speech level
	assert.Greater(t, mixed.Samples[0], int16(2000))
	assert.Less(t, mixed.Samples[0], int16(2000+4000))
}

func TestAssembleMusicSelection(t *testing.T) {
	beds := map[string]*audio.Clip{
		"ambient": audio.Silence(testRate, 100*time.Millisecond),
		"upbeat":  audio.Silence(testRate, 100*time.Millisecond),
	}
	svc := NewService(beds, Options{SampleRate: testRate})

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"explicit style", "upbeat", "upbeat"},
		{"unknown style falls back to ambient", "jazz", "ambient"},
		{"empty style uses ambient default", "", "ambient"},
	}

	t.Run("configured default style wins", func(t *testing.T) {
		custom := NewService(beds, Options{SampleRate: testRate, DefaultStyle: "upbeat"})
		artifact, err := custom.Assemble(fourTurnSegments(), "")
		require.NoError(t, err)
		assert.Equal(t, "upbeat", artifact.MusicTrack)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact, err := svc.Assemble(fourTurnSegments(), tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, artifact.MusicTrack)
		})
	}
}

func TestAssembleNoMusicConfigured(t *testing.T) {
	svc := NewService(nil, Options{SampleRate: testRate})
	artifact, err := svc.Assemble(fourTurnSegments(), "ambient")
	require.NoError(t, err)
	assert.Empty(t, artifact.MusicTrack)
}

func TestAssembleRejectsFailedSegment(t *testing.T) {
	segments := fourTurnSegments()
	segments[2].Status = models.SynthesisFailed

	svc := NewService(nil, Options{SampleRate: testRate})
	_, err := svc.Assemble(segments, "")
	require.Error(t, err)
}

func TestAssembleEmptyInput(t *testing.T) {
	svc := NewService(nil, Options{SampleRate: testRate})
	_, err := svc.Assemble(nil, "")
	require.Error(t, err)
}
