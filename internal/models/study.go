package models

// MCQ is a multiple-choice question with four lettered options.
type MCQ struct {
	ID            string            `json:"id,omitempty"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correctOption"`
	Explanation   string            `json:"explanation,omitempty"`
	Citation      *Citation         `json:"citation,omitempty"`
}

// ShortAnswerItem is an open question with a model answer.
type ShortAnswerItem struct {
	Question    string    `json:"question"`
	ModelAnswer string    `json:"modelAnswer"`
	Citation    *Citation `json:"citation,omitempty"`
}

// StudyMaterials bundles generated practice questions. The requested
// counts are advisory; the model may under- or over-deliver, so
// consumers must tolerate variable-length slices.
type StudyMaterials struct {
	MCQs        []MCQ             `json:"mcqs"`
	ShortAnswer []ShortAnswerItem `json:"shortAnswer"`
}

// EssayQuestion is an open-ended exam question graded by the model.
type EssayQuestion struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
}

// Exam is a generated mock exam.
type Exam struct {
	MCQs   []MCQ           `json:"mcqs"`
	Essays []EssayQuestion `json:"essays"`
}

// GradeResult is the model's grading of one essay answer.
type GradeResult struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	IdealPoints []string `json:"idealPoints"`
}

// ExamResult aggregates locally graded MCQs and per-essay grades.
type ExamResult struct {
	MCQCorrect int                    `json:"mcqCorrect"`
	MCQTotal   int                    `json:"mcqTotal"`
	Essays     map[string]GradeResult `json:"essays"`
}
