package models

// AnswerNotFound is the reserved answer value the model emits when the
// supplied evidence is insufficient to answer the question.
const AnswerNotFound = "NOT_FOUND"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Citation points from a generated answer back to the chunk it was
// grounded in.
type Citation struct {
	FileName   string `json:"fileName"`
	PageNumber int    `json:"pageNumber"`
	ChunkIndex int    `json:"chunkIndex,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
}

// StructuredAnswer is the parsed result of a grounded Q&A call.
type StructuredAnswer struct {
	Answer           string     `json:"answer"`
	Confidence       string     `json:"confidence,omitempty"`
	Citations        []Citation `json:"citations,omitempty"`
	EvidenceSnippets []string   `json:"evidenceSnippets,omitempty"`
}

// NotFound reports whether the answer is the insufficient-evidence sentinel.
func (a StructuredAnswer) NotFound() bool {
	return a.Answer == AnswerNotFound
}

// Turn is one entry in a subject's conversation history.
type Turn struct {
	Role    string            `json:"role"`
	Content string            `json:"content"`
	Parsed  *StructuredAnswer `json:"parsed,omitempty"`
}
