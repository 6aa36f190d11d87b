package model

import "fmt"

// ContextChunk is one unit of retrieved paper text. Chunks are produced by
// the external retrieval layer and are read-only inside the verifier: nothing
// here mutates them after a check starts.
type ContextChunk struct {
	ID        int     `json:"id"`                  // Stable chunk index within the paper
	Content   string  `json:"content"`             // Raw chunk text
	Relevance float64 `json:"relevance,omitempty"` // Retrieval relevance score (0-1)
}

// Label returns the identifier form used in prompts and answers ("Chunk N")
func (c ContextChunk) Label() string {
	return fmt.Sprintf("Chunk %d", c.ID)
}

// CitationMarker is a chunk reference embedded in a generated answer.
// Validity depends on whether the referenced chunk exists in the supplied
// context and whether its content supports the statement the marker sits in.
type CitationMarker struct {
	ChunkID   int    `json:"chunk_id"`            // Referenced chunk identifier
	Raw       string `json:"raw"`                 // Marker text as it appeared (e.g. "[Chunk 3]")
	Statement string `json:"statement,omitempty"` // Sentence the marker is attached to, markers stripped
	Sentence  int    `json:"sentence,omitempty"`  // Sentence index in the answer (0-based)
}
