package qa

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Canned response for questions the retrieved context cannot answer
const (
	NoContextAnswer    = "Could not find relevant information in the paper."
	NoContextCitations = "No relevant sections found"

	// MissingCitations marks a response that omitted the citations line
	MissingCitations = "Not provided"
)

var (
	answerPattern    = regexp.MustCompile(`(?s)Answer:\s*(.*?)(?:\n*Citations:|$)`)
	citationsPattern = regexp.MustCompile(`Citations:\s*(.*)`)
)

// ParseResponse splits a model response into its answer body and citations
// line. A response that ignores the format entirely is kept whole as the
// answer rather than discarded.
func ParseResponse(text string) (answer, citations string) {
	answer = strings.TrimSpace(text)
	citations = MissingCitations

	if m := answerPattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		answer = strings.TrimSpace(m[1])
	}
	if m := citationsPattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		citations = strings.TrimSpace(m[1])
	}

	return answer, citations
}

// BuildContext renders retrieved chunks into the labeled block the QA and
// verification prompts share. Chunk labels are what answers cite.
func BuildContext(chunks []model.ContextChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[%s]: %s", c.Label(), c.Content))
	}
	return strings.Join(parts, "\n\n")
}

// qaSystemPrompt frames every answer-generation call
const qaSystemPrompt = "You are a careful research assistant. Answer questions about a scientific paper strictly from the excerpts you are given."

// BuildQAPrompt asks for a grounded, cited answer to the question
func BuildQAPrompt(question string, chunks []model.ContextChunk) string {
	return fmt.Sprintf(`Answer the question using ONLY the context chunks below.

CRITICAL RULES:
1. Use only facts stated in the context chunks
2. Cite a chunk for every factual statement, e.g. [Chunk 2]
3. If the context does not contain the answer, say so instead of guessing
4. Keep the answer to a few sentences

Context:
%s

Question: %s

Output format:
Answer: <answer text with [Chunk N] citations>
Citations: <chunk labels used, e.g. Chunk 1, Chunk 3>`, BuildContext(chunks), question)
}
