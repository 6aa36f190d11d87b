package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
)

// Cache defines the interface for verdict and answer caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// VerdictKey fingerprints one verification input. Two runs with the same
// provider, model, question, answer, and retrieved chunks share a verdict.
func VerdictKey(provider, modelName, question, answer string, chunks []model.ContextChunk) string {
	return "paperqa:verdict:v1:" + digest(provider, modelName, question, answer, chunks)
}

// AnswerKey fingerprints one generation input: the question and the chunks
// it will be answered from.
func AnswerKey(provider, modelName, question string, chunks []model.ContextChunk) string {
	return "paperqa:answer:v1:" + digest(provider, modelName, question, "", chunks)
}

func digest(provider, modelName, question, answer string, chunks []model.ContextChunk) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, question, answer} {
		io.WriteString(h, part)
		h.Write([]byte{0})
	}
	for _, c := range chunks {
		fmt.Fprintf(h, "%d:%s", c.ID, c.Content)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
