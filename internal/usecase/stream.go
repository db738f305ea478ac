package usecase

import (
	"regexp"
	"time"

	"weatherchat/internal/domain/entity"
)

// Chunking bounds: sentences longer than longSentence characters are re-split
// into subChunk-sized pieces so no single event grows unbounded.
const (
	longSentence = 80
	subChunk     = 60
)

var sentenceBoundary = regexp.MustCompile(`[.?!][ \t\r\n]+`)

// Streamer converts a finished pipeline result into an ordered, finite
// sequence of framed events. The transport decides how each event is
// forwarded; emit returning an error (consumer gone) stops emission
// without failing.
type Streamer struct {
	chunkDelay time.Duration
}

func NewStreamer(chunkDelay time.Duration) *Streamer {
	return &Streamer{chunkDelay: chunkDelay}
}

// Stream emits, in order: one meta event, one chunk event per piece of
// the answer, one done event. A failed result yields a single error
// event instead. Joining the chunk texts in index order reproduces the
// answer exactly.
func (s *Streamer) Stream(result *entity.ProcessResult, emit func(entity.StreamEvent) error) {
	if result.Failed() {
		_ = emit(entity.StreamEvent{Err: result})
		return
	}

	if err := emit(entity.StreamEvent{
		Type:    entity.EventMeta,
		City:    result.City,
		Weather: result.Weather,
	}); err != nil {
		return
	}

	for i, chunk := range SplitChunks(result.Answer) {
		idx := i
		if err := emit(entity.StreamEvent{Type: entity.EventChunk, Index: &idx, Text: chunk}); err != nil {
			return
		}
		if s.chunkDelay > 0 {
			time.Sleep(s.chunkDelay)
		}
	}

	_ = emit(entity.StreamEvent{Type: entity.EventDone})
}

// SplitChunks splits an answer on sentence boundaries, keeping the
// trailing whitespace with its sentence so concatenation is lossless,
// then re-splits any piece longer than longSentence into subChunk-sized
// slices.
func SplitChunks(answer string) []string {
	var chunks []string
	for _, piece := range splitSentences(answer) {
		runes := []rune(piece)
		if len(runes) <= longSentence {
			chunks = append(chunks, piece)
			continue
		}
		for i := 0; i < len(runes); i += subChunk {
			end := i + subChunk
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[i:end]))
		}
	}
	return chunks
}

// splitSentences cuts after each run of sentence punctuation plus
// whitespace. The whitespace stays attached to the preceding piece.
func splitSentences(s string) []string {
	var pieces []string
	prev := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(s, -1) {
		pieces = append(pieces, s[prev:loc[1]])
		prev = loc[1]
	}
	if prev < len(s) {
		pieces = append(pieces, s[prev:])
	}
	return pieces
}
