package assembly

import (
	"fmt"
	"sort"
	"time"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/pkg/audio"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
)

// Options configures the assembler
type Options struct {
	InterTurnPause time.Duration
	MusicGainDB    float64
	SampleRate     int
	DefaultStyle   string
}

// Service concatenates synthesized segments into the final podcast audio.
// It is a pure transformation: no network calls, no filesystem, identical
// inputs produce identical output.
type Service struct {
	opts   Options
	music  map[string]*audio.Clip
	styles []string
}

// NewService creates a new assembler. music maps style identifiers to
// decoded music beds; a nil or empty map disables the bed entirely.
func NewService(music map[string]*audio.Clip, opts Options) *Service {
	if opts.InterTurnPause <= 0 {
		opts.InterTurnPause = 200 * time.Millisecond
	}
	if opts.MusicGainDB == 0 {
		opts.MusicGainDB = -15
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 24000
	}
	if opts.DefaultStyle == "" {
		opts.DefaultStyle = DefaultMusicStyle
	}

	styles := make([]string, 0, len(music))
	for name := range music {
		styles = append(styles, name)
	}
	sort.Strings(styles)

	return &Service{opts: opts, music: music, styles: styles}
}

// DefaultMusicStyle is used when the request names no style and no
// "ambient" bed is configured either.
const DefaultMusicStyle = "ambient"

// Assemble concatenates the segments in index order with a fixed pause
// between turns, records each segment's offset in the timeline, and mixes
// the selected music bed under the full duration.
func (s *Service) Assemble(segments []models.AudioSegment, musicStyle string) (*models.PodcastArtifact, error) {
	if len(segments) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "no segments to assemble")
	}

	ordered := make([]models.AudioSegment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	pause := audio.Silence(s.opts.SampleRate, s.opts.InterTurnPause)
	timeline := make([]models.TimelineEntry, 0, len(ordered))
	clips := make([]*audio.Clip, 0, 2*len(ordered))

	var offsetMs int64
	for i, seg := range ordered {
		if seg.Status != models.SynthesisSucceeded {
			return nil, apperrors.New(apperrors.ErrCodeValidation,
				fmt.Sprintf("segment %d is not a successful synthesis result", seg.Index))
		}
		clip, err := audio.DecodeWAV(seg.Audio)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "segment %d audio is not decodable", seg.Index)
		}

		if i > 0 {
			clips = append(clips, pause)
			offsetMs += pause.DurationMs()
		}
		timeline = append(timeline, models.TimelineEntry{
			Index:         seg.Index,
			Speaker:       seg.Speaker,
			StartOffsetMs: offsetMs,
			DurationMs:    clip.DurationMs(),
		})
		clips = append(clips, clip)
		offsetMs += clip.DurationMs()
	}

	voice, err := audio.Concat(clips...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "segment sample rates do not match")
	}

	style, bed := s.selectMusic(musicStyle)
	final := voice
	if bed != nil {
		final, err = audio.MixUnder(voice, bed, s.opts.MusicGainDB)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "music bed sample rate does not match speech")
		}
	}

	return &models.PodcastArtifact{
		Audio:      audio.EncodeWAV(final),
		DurationMs: final.DurationMs(),
		Timeline:   timeline,
		MusicTrack: style,
	}, nil
}

// selectMusic resolves the style to a configured bed: the explicit style
// first, then the configured default, then any configured bed in stable
// order. No beds configured means speech only.
func (s *Service) selectMusic(style string) (string, *audio.Clip) {
	if len(s.music) == 0 {
		return "", nil
	}
	if bed, ok := s.music[style]; ok && style != "" {
		return style, bed
	}
	if bed, ok := s.music[s.opts.DefaultStyle]; ok {
		return s.opts.DefaultStyle, bed
	}
	name := s.styles[0]
	return name, s.music[name]
}
