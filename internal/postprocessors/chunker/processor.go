// Package chunker splits long text into bounded pages.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 8000

// DefaultChunkOverlap is the default number of bytes repeated at the start
// of the next chunk.
const DefaultChunkOverlap = 0

// Processor splits text into chunks of at most chunkSize bytes. Chunks never
// split a UTF-8 sequence and end after a line break when one falls in the
// second half of the chunk.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the maximum chunk size in bytes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Split cuts content into chunks. Empty content produces no chunks.
func (p *Processor) Split(content string) []string {
	if content == "" {
		return nil
	}

	chunks := make([]string, 0, len(content)/(p.chunkSize-p.overlap)+1)
	start := 0
	for start < len(content) {
		end := start + p.chunkSize
		if end >= len(content) {
			chunks = append(chunks, content[start:])
			break
		}

		for end > start && !utf8.RuneStart(content[end]) {
			end--
		}
		if end == start {
			// chunkSize is smaller than the rune at start.
			_, size := utf8.DecodeRuneInString(content[start:])
			end = start + size
		}
		if i := strings.LastIndexByte(content[start:end], '\n'); i >= (end-start)/2 {
			end = start + i + 1
		}
		chunks = append(chunks, content[start:end])

		next := end - p.overlap
		for next > start && next < end && !utf8.RuneStart(content[next]) {
			next--
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
