package synthesis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/podforge/podforge-api/internal/models"
	"github.com/podforge/podforge-api/pkg/audio"
	apperrors "github.com/podforge/podforge-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSynthesizer is a mock implementation of Synthesizer for testing
type mockSynthesizer struct {
	mu        sync.Mutex
	calls     map[string]int
	failUntil map[string]int // text -> attempts that fail
	failWith  error
	latency   func() time.Duration
	inFlight  int64
	peak      int64
}

func newMockSynthesizer() *mockSynthesizer {
	return &mockSynthesizer{calls: map[string]int{}, failUntil: map[string]int{}}
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	cur := atomic.AddInt64(&m.inFlight, 1)
	defer atomic.AddInt64(&m.inFlight, -1)
	for {
		p := atomic.LoadInt64(&m.peak)
		if cur <= p || atomic.CompareAndSwapInt64(&m.peak, p, cur) {
			break
		}
	}

	if m.latency != nil {
		time.Sleep(m.latency())
	}

	m.mu.Lock()
	m.calls[text]++
	n := m.calls[text]
	limit := m.failUntil[text]
	m.mu.Unlock()

	if n <= limit {
		if m.failWith != nil {
			return nil, m.failWith
		}
		return nil, apperrors.New(apperrors.ErrCodeSynthesisUnavailable, "transient").Transient()
	}

	// 100ms of silence per synthesized piece
	return audio.EncodeWAV(audio.Silence(24000, 100*time.Millisecond)), nil
}

func testTurns(n int) []models.ScriptTurn {
	turns := make([]models.ScriptTurn, n)
	for i := range turns {
		speaker := "Host A"
		if i%2 == 1 {
			speaker = "Host B"
		}
		turns[i] = models.ScriptTurn{Index: i, Speaker: speaker, Text: fmt.Sprintf("turn number %d", i)}
	}
	return turns
}

func testAssignment() *models.VoiceAssignment {
	return &models.VoiceAssignment{Voices: map[string]models.VoiceIdentity{
		"Host A": {ID: "voice-1", Name: "Aaron"},
		"Host B": {ID: "voice-2", Name: "Bella"},
	}}
}

func TestSynthesizeOrderIndependentOfCompletionOrder(t *testing.T) {
	mock := newMockSynthesizer()
	mock.latency = func() time.Duration { return time.Duration(rand.Intn(20)) * time.Millisecond }

	svc := NewService(mock, Options{Workers: 4})
	segments, err := svc.Synthesize(context.Background(), testTurns(12), testAssignment())

	require.NoError(t, err)
	require.Len(t, segments, 12)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, models.SynthesisSucceeded, seg.Status)
		assert.NotEmpty(t, seg.Audio)
		assert.Equal(t, int64(100), seg.DurationMs)
	}
}

func TestSynthesizeRespectsWorkerLimit(t *testing.T) {
	mock := newMockSynthesizer()
	mock.latency = func() time.Duration { return 10 * time.Millisecond }

	svc := NewService(mock, Options{Workers: 2})
	_, err := svc.Synthesize(context.Background(), testTurns(10), testAssignment())

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&mock.peak), int64(2))
}

func TestSynthesizeRetriesTransientFailures(t *testing.T) {
	mock := newMockSynthesizer()
	mock.failUntil["turn number 1"] = 2 // fails twice, succeeds on third attempt

	svc := NewService(mock, Options{Workers: 2, MaxRetries: 3, InitialBackoff: time.Millisecond})
	segments, err := svc.Synthesize(context.Background(), testTurns(3), testAssignment())

	require.NoError(t, err)
	assert.Len(t, segments, 3)
	assert.Equal(t, 3, mock.calls["turn number 1"])
}

func TestSynthesizeFailsWithTurnIndexAfterExhaustedRetries(t *testing.T) {
	mock := newMockSynthesizer()
	mock.failUntil["turn number 2"] = 99

	svc := NewService(mock, Options{Workers: 2, MaxRetries: 3, InitialBackoff: time.Millisecond})
	segments, err := svc.Synthesize(context.Background(), testTurns(5), testAssignment())

	require.Error(t, err)
	assert.Nil(t, segments)
	assert.Equal(t, apperrors.ErrCodeSynthesisFailed, apperrors.GetCode(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 2, appErr.Details["turn"])
	assert.Equal(t, 3, mock.calls["turn number 2"])
}

func TestSynthesizePermanentFailureNotRetried(t *testing.T) {
	mock := newMockSynthesizer()
	mock.failUntil["turn number 0"] = 99
	mock.failWith = apperrors.New(apperrors.ErrCodeInvalidVoice, "unknown voice").Permanent()

	svc := NewService(mock, Options{Workers: 1, MaxRetries: 3, InitialBackoff: time.Millisecond})
	_, err := svc.Synthesize(context.Background(), testTurns(1), testAssignment())

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidVoice))
	// One real attempt plus one aggressive-sanitize attempt at most
	assert.LessOrEqual(t, mock.calls["turn number 0"], 2)
}

func TestSynthesizeSplitsLongTurns(t *testing.T) {
	mock := newMockSynthesizer()

	long := ""
	for i := 0; i < 20; i++ {
		long += fmt.Sprintf("Sentence number %d in a very long utterance. ", i)
	}
	turns := []models.ScriptTurn{{Index: 0, Speaker: "Host A", Text: long}}

	svc := NewService(mock, Options{Workers: 1, MaxTTSChars: 100})
	segments, err := svc.Synthesize(context.Background(), turns, testAssignment())

	require.NoError(t, err)
	require.Len(t, segments, 1)

	mock.mu.Lock()
	pieces := len(mock.calls)
	mock.mu.Unlock()
	assert.Greater(t, pieces, 1)
	// All pieces join back into one segment
	assert.Equal(t, int64(pieces)*100, segments[0].DurationMs)
}

func TestSynthesizeMissingVoiceAssignment(t *testing.T) {
	mock := newMockSynthesizer()
	turns := []models.ScriptTurn{{Index: 0, Speaker: "Narrator", Text: "hello"}}

	svc := NewService(mock, Options{Workers: 1})
	_, err := svc.Synthesize(context.Background(), turns, testAssignment())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSynthesisFailed, apperrors.GetCode(err))
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidVoice))
}

func TestSynthesizeEmptyTurns(t *testing.T) {
	svc := NewService(newMockSynthesizer(), Options{})
	_, err := svc.Synthesize(context.Background(), nil, testAssignment())
	require.Error(t, err)
}
