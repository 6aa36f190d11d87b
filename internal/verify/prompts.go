package verify

import (
	"fmt"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// judgeSystemPrompt frames every deterministic judge call
const judgeSystemPrompt = "You are a strict verification assistant for research paper question answering. Follow the requested output format exactly and never add commentary."

// ClaimExtractionPrompt asks for the answer decomposed into atomic,
// independently checkable claims.
func ClaimExtractionPrompt(answer string) string {
	return fmt.Sprintf(`Extract 3-5 key factual claims from the following answer.
Each claim must be a single self-contained statement that can be checked
against the paper on its own. Do not merge two facts into one claim and do
not invent facts that are not in the answer.
Return as a JSON list of strings.

Answer:
%s

Output format: ["claim 1", "claim 2", "claim 3"]`, answer)
}

// SupportCheckPrompt asks whether a chunk's content supports the statement a
// citation marker is attached to.
func SupportCheckPrompt(statement string, chunk model.ContextChunk) string {
	return fmt.Sprintf(`Verify if the following statement is supported by the excerpt below.

Statement: %s

Excerpt from paper (%s):
%s

Respond with ONLY one word: SUPPORTED or NOT_SUPPORTED`, statement, chunk.Label(), chunk.Content)
}

// NLIPrompt asks for an entailment verdict on one claim against the full context
func NLIPrompt(claim, context string) string {
	return fmt.Sprintf(`Verify if the claim is supported by the context.

Context:
%s

Claim:
%s

Return JSON:
{
  "verdict": "SUPPORTED" | "CONTRADICTED" | "NOT_ENOUGH_INFO",
  "explanation": "brief reason"
}`, context, claim)
}

// JoinChunks concatenates chunk contents into the context block used by
// NLI prompts.
func JoinChunks(chunks []model.ContextChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, "\n\n")
}

// findJSON locates the outermost JSON value delimited by open/close in text,
// tolerating markdown fences and prose around it.
func findJSON(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
