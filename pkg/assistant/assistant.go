package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/retriever"
)

type AssistantConfig struct {
	HistoryWindow    int // turns of context per question
	Language         string
	MCQCount         int // study-material MCQs requested
	ShortAnswerCount int
	ExamMCQCount     int
	ExamEssayCount   int
	ChunkLimit       int // chunks fed to study/exam/grading prompts
}

// Assistant is the prompt/response contract layer: it builds the task
// prompts, calls the injected generator, parses the structured result
// and maintains per-subject conversation state.
type Assistant struct {
	config    AssistantConfig
	generator types.Generator
	store     types.ChunkStore
	retriever retriever.Retriever

	mu            sync.Mutex
	conversations map[string]*Conversation
}

func NewWithConfig(config AssistantConfig, generator types.Generator, store types.ChunkStore, r retriever.Retriever) *Assistant {
	if config.HistoryWindow == 0 {
		config.HistoryWindow = 6
	}
	if config.Language == "" {
		config.Language = "English"
	}
	if config.MCQCount == 0 {
		config.MCQCount = 5
	}
	if config.ShortAnswerCount == 0 {
		config.ShortAnswerCount = 3
	}
	if config.ExamMCQCount == 0 {
		config.ExamMCQCount = 3
	}
	if config.ExamEssayCount == 0 {
		config.ExamEssayCount = 2
	}
	if config.ChunkLimit == 0 {
		config.ChunkLimit = 20
	}

	return &Assistant{
		config:        config,
		generator:     generator,
		store:         store,
		retriever:     r,
		conversations: make(map[string]*Conversation),
	}
}

// Conversation returns the history for a subject, creating it on first
// use.
func (a *Assistant) Conversation(subject string) *Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()

	conv, ok := a.conversations[subject]
	if !ok {
		conv = NewConversation()
		a.conversations[subject] = conv
	}
	return conv
}

// Ask answers a question grounded in the subject's notes. The user
// turn is appended immediately; the assistant turn is appended only on
// a confirmed success path, so a failed model call or unparseable
// response leaves the history with the pending user turn and nothing
// else.
func (a *Assistant) Ask(ctx context.Context, subject, question string) (models.StructuredAnswer, error) {
	conv := a.Conversation(subject)
	history := conv.RecentWindow(a.config.HistoryWindow)
	conv.AppendUser(question)

	chunks, err := a.store.ListChunks(ctx)
	if err != nil {
		return models.StructuredAnswer{}, fmt.Errorf("failed to list chunks: %w", err)
	}

	result := a.retriever.Retrieve(question, chunks)
	if result.InsufficientContext {
		// An expected outcome, not a fault: nothing in the notes
		// matches, so the sentinel answer is produced without a
		// model call.
		answer := models.StructuredAnswer{Answer: models.AnswerNotFound}
		conv.AppendAssistant(answer.Answer, &answer)
		return answer, nil
	}

	system, user := QAPrompt(subject, result.TopChunks, history, question, a.config.Language)
	raw, err := a.generator.Generate(ctx, system, user, types.GenerateOptions{JSONMode: true})
	if err != nil {
		return models.StructuredAnswer{}, err
	}

	answer, err := ParseAnswer(raw)
	if err != nil {
		return models.StructuredAnswer{}, err
	}

	conv.AppendAssistant(answer.Answer, &answer)
	return answer, nil
}

// GenerateStudyMaterials produces practice MCQs and short-answer
// questions from the subject's notes. The configured counts are
// requested, not enforced: the returned slices may be shorter or
// longer.
func (a *Assistant) GenerateStudyMaterials(ctx context.Context, subject string) (models.StudyMaterials, error) {
	chunks, err := a.contextChunks(ctx)
	if err != nil {
		return models.StudyMaterials{}, err
	}

	system, user := StudyPrompt(subject, chunks, a.config.MCQCount, a.config.ShortAnswerCount)
	raw, err := a.generator.Generate(ctx, system, user, types.GenerateOptions{JSONMode: true})
	if err != nil {
		return models.StudyMaterials{}, err
	}

	var materials models.StudyMaterials
	if err := ParseInto(raw, &materials); err != nil {
		return models.StudyMaterials{}, err
	}
	return materials, nil
}

// GenerateExam produces a mock exam from the subject's notes.
func (a *Assistant) GenerateExam(ctx context.Context, subject string) (models.Exam, error) {
	chunks, err := a.contextChunks(ctx)
	if err != nil {
		return models.Exam{}, err
	}

	system, user := ExamPrompt(subject, chunks, a.config.ExamMCQCount, a.config.ExamEssayCount)
	raw, err := a.generator.Generate(ctx, system, user, types.GenerateOptions{Temperature: types.Temperature(0.3), JSONMode: true})
	if err != nil {
		return models.Exam{}, err
	}

	var exam models.Exam
	if err := ParseInto(raw, &exam); err != nil {
		return models.Exam{}, err
	}

	// Models sometimes omit the requested IDs; grading is keyed by
	// them, so fill in the gaps.
	for i := range exam.MCQs {
		if exam.MCQs[i].ID == "" {
			exam.MCQs[i].ID = fmt.Sprintf("m%d", i+1)
		}
	}
	for i := range exam.Essays {
		if exam.Essays[i].ID == "" {
			exam.Essays[i].ID = fmt.Sprintf("e%d", i+1)
		}
	}
	return exam, nil
}

// GradeEssay grades one free-text answer against the notes.
func (a *Assistant) GradeEssay(ctx context.Context, question, studentAnswer string) (models.GradeResult, error) {
	chunks, err := a.contextChunks(ctx)
	if err != nil {
		return models.GradeResult{}, err
	}

	system, user := GradePrompt(question, studentAnswer, chunks)
	raw, err := a.generator.Generate(ctx, system, user, types.GenerateOptions{Temperature: types.Temperature(0.2), JSONMode: true})
	if err != nil {
		return models.GradeResult{}, err
	}

	var grade models.GradeResult
	if err := ParseInto(raw, &grade); err != nil {
		return models.GradeResult{}, err
	}
	return grade, nil
}

// GradeExam grades a submitted exam. MCQs are graded locally by exact
// option match and never invoke the model. Essays are graded one model
// call at a time, sequentially, so a failure on one question cannot
// affect the others; a failed grade is recorded as zero with an
// explanatory message.
func (a *Assistant) GradeExam(ctx context.Context, exam models.Exam, answers map[string]string) (models.ExamResult, error) {
	result := models.ExamResult{
		MCQTotal: len(exam.MCQs),
		Essays:   make(map[string]models.GradeResult, len(exam.Essays)),
	}

	for _, mcq := range exam.MCQs {
		if answers[mcq.ID] == mcq.CorrectOption {
			result.MCQCorrect++
		}
	}

	for _, essay := range exam.Essays {
		answer := answers[essay.ID]
		if answer == "" {
			answer = "No answer provided."
		}
		grade, err := a.GradeEssay(ctx, essay.Question, answer)
		if err != nil {
			result.Essays[essay.ID] = models.GradeResult{
				Score:    0,
				Feedback: "Failed to grade this question.",
			}
			continue
		}
		result.Essays[essay.ID] = grade
	}

	return result, nil
}

// SummarizeLecture turns a live lecture transcript into structured
// study notes.
func (a *Assistant) SummarizeLecture(ctx context.Context, transcript string) (string, error) {
	if transcript == "" {
		return "", fmt.Errorf("transcript is required")
	}
	system, user := LecturePrompt(transcript)
	return a.generator.Generate(ctx, system, user, types.GenerateOptions{Temperature: types.Temperature(0.3)})
}

func (a *Assistant) contextChunks(ctx context.Context) ([]models.Chunk, error) {
	chunks, err := a.store.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no notes uploaded")
	}
	if len(chunks) > a.config.ChunkLimit {
		chunks = chunks[:a.config.ChunkLimit]
	}
	return chunks, nil
}
