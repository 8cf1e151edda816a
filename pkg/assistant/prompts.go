package assistant

import (
	"fmt"
	"strings"

	"github.com/asknotes/asknotes/internal/models"
)

// maxContextChars caps the notes context included in a prompt.
const maxContextChars = 15000

const qaSystemTemplate = `You are a helpful study assistant. Answer ONLY using the provided notes. Do not use any outside knowledge. If the notes don't contain relevant information, set "answer" to "NOT_FOUND".
IMPORTANT: YOU MUST RESPOND IN THE FOLLOWING LANGUAGE: %s.
Respond in valid JSON (no markdown fences, just raw JSON):
{"answer":"string","confidence":"High"|"Medium"|"Low","citations":[{"fileName":"string","pageNumber":0,"chunkIndex":0,"excerpt":"string"}],"evidenceSnippets":["string"]}`

const studySystemTemplate = `You are a study question generator. Generate questions ONLY from the provided notes. Respond ONLY in this exact JSON structure (no markdown fences, just raw JSON):
{"mcqs":[{"question":"string","options":{"A":"string","B":"string","C":"string","D":"string"},"correctOption":"A"|"B"|"C"|"D","explanation":"string","citation":{"fileName":"string","pageNumber":0}}],"shortAnswer":[{"question":"string","modelAnswer":"string","citation":{"fileName":"string","pageNumber":0}}]}`

const examSystemTemplate = `You are a strict but fair professor creating a mock exam for the subject: %s.
Based ONLY on the provided notes, create an exam consisting of:
1. %d Multiple Choice Questions (with 4 options and 1 correct answer)
2. %d Open-Ended Short Essay Questions

Respond ONLY with valid JSON in this EXACT format:
{"mcqs":[{"id":"m1","question":"...","options":{"A":"...","B":"...","C":"...","D":"..."},"correctOption":"A"}],"essays":[{"id":"e1","question":"..."}]}`

const gradeSystemTemplate = `You are an expert TA grading a student's answer.
QUESTION: %s
STUDENT ANSWER: %s

Based ONLY on the provided notes, grade this answer out of 100. Be critical but fair.
Respond ONLY with valid JSON in this EXACT format:
{"score":85,"feedback":"Your explanation of X was great, but you missed Y...","idealPoints":["Point 1","Point 2"]}`

const lectureSystemPrompt = `You are an expert academic assistant. Summarize the following live lecture transcript into clear, structured, and easy-to-read study notes.
Use markdown formatting (bullet points, bold text, headers) to organize the information logically. Extract key terms, definitions, and main themes.`

// QAPrompt builds the grounded Q&A contract: evidence set, recent
// conversation window, and the question.
func QAPrompt(subject string, evidence []models.ScoredChunk, history []models.Turn, question, language string) (system, user string) {
	if language == "" {
		language = "English"
	}
	system = fmt.Sprintf(qaSystemTemplate, language)

	var notes strings.Builder
	for i, chunk := range evidence {
		if i > 0 {
			notes.WriteString("\n\n")
		}
		fmt.Fprintf(&notes, "%d. [File: %s, Page: %d, Chunk: %d]\nText: %s",
			i+1, chunk.FileName, chunk.PageNumber, chunk.ChunkIndex, chunk.Text)
	}

	hist := "None"
	if len(history) > 0 {
		var lines []string
		for _, turn := range history {
			speaker := "Student"
			if turn.Role == models.RoleAssistant {
				speaker = "Assistant"
			}
			lines = append(lines, fmt.Sprintf("%s: %s", speaker, turn.Content))
		}
		hist = strings.Join(lines, "\n")
	}

	user = fmt.Sprintf("Subject: %s\n\n--- NOTES ---\n%s\n\n--- CONVERSATION ---\n%s\n\n--- QUESTION ---\n%s",
		subject, notes.String(), hist, question)
	return system, user
}

// StudyPrompt builds the study-material generation contract. The
// counts are request parameters, not a hard validation.
func StudyPrompt(subject string, chunks []models.Chunk, mcqCount, shortCount int) (system, user string) {
	system = studySystemTemplate
	user = fmt.Sprintf("Subject: %s\n\nNotes:\n%s\n\nGenerate exactly %d MCQs and exactly %d short-answer questions.",
		subject, joinChunkText(chunks), mcqCount, shortCount)
	return system, user
}

// ExamPrompt builds the exam generation contract.
func ExamPrompt(subject string, chunks []models.Chunk, mcqCount, essayCount int) (system, user string) {
	system = fmt.Sprintf(examSystemTemplate, subject, mcqCount, essayCount)
	user = fmt.Sprintf("NOTES CONTEXT:\n%s", joinChunkText(chunks))
	return system, user
}

// GradePrompt builds the essay grading contract.
func GradePrompt(question, studentAnswer string, chunks []models.Chunk) (system, user string) {
	system = fmt.Sprintf(gradeSystemTemplate, question, studentAnswer)
	user = fmt.Sprintf("NOTES CONTEXT:\n%s", joinChunkText(chunks))
	return system, user
}

// LecturePrompt builds the lecture summarization contract.
func LecturePrompt(transcript string) (system, user string) {
	return lectureSystemPrompt, fmt.Sprintf("TRANSCRIPT:\n%s", truncate(transcript, maxContextChars))
}

func joinChunkText(chunks []models.Chunk) string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return truncate(strings.Join(texts, "\n\n"), maxContextChars)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
