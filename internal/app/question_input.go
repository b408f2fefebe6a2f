package app

import (
	"encoding/json"
	"fmt"

	"mcq-assessment-service/internal/domain"
)

// OptionInput is an option as authored by admins and import files.
type OptionInput struct {
	Text        string `json:"text" yaml:"text" validate:"required"`
	IsCorrect   bool   `json:"isCorrect" yaml:"isCorrect"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// QuestionInput is the authoring shape of a question, shared by the HTTP API and the import command.
type QuestionInput struct {
	Question       string              `json:"question" yaml:"question" validate:"required"`
	Code           *domain.CodeSnippet `json:"code,omitempty" yaml:"code,omitempty"`
	Options        []OptionInput       `json:"options" yaml:"options" validate:"min=2,dive"`
	CorrectAnswer  *int                `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty" validate:"omitempty,gte=0"`
	Explanation    string              `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Category       domain.Category     `json:"category,omitempty" yaml:"category,omitempty" validate:"omitempty,oneof=course skill interview certification"`
	Difficulty     domain.Difficulty   `json:"difficulty,omitempty" yaml:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Skill          string              `json:"skill,omitempty" yaml:"skill,omitempty"`
	Tags           []string            `json:"tags,omitempty" yaml:"tags,omitempty"`
	InterviewLevel string              `json:"interviewLevel,omitempty" yaml:"interviewLevel,omitempty"`
	CodeLevel      string              `json:"codeLevel,omitempty" yaml:"codeLevel,omitempty"`
	CourseID       string              `json:"courseId,omitempty" yaml:"courseId,omitempty"`
	TopicID        string              `json:"topicId,omitempty" yaml:"topicId,omitempty"`
	TechnologyID   string              `json:"technologyId,omitempty" yaml:"technologyId,omitempty"`
	Points         int                 `json:"points,omitempty" yaml:"points,omitempty" validate:"gte=0"`
	TimeLimit      int                 `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty" validate:"gte=0"`
	IsActive       *bool               `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

// ToQuestion converts the input. Without an explicit correctAnswer the first option
// flagged correct wins; IsActive defaults to true.
func (in QuestionInput) ToQuestion() domain.Question {
	q := domain.Question{
		Text:           in.Question,
		Code:           in.Code,
		Explanation:    in.Explanation,
		Category:       in.Category,
		Difficulty:     in.Difficulty,
		Skill:          in.Skill,
		Tags:           in.Tags,
		InterviewLevel: in.InterviewLevel,
		CodeLevel:      in.CodeLevel,
		CourseID:       in.CourseID,
		TopicID:        in.TopicID,
		TechnologyID:   in.TechnologyID,
		Points:         in.Points,
		TimeLimit:      in.TimeLimit,
		IsActive:       true,
	}
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	q.Options = make([]domain.Option, len(in.Options))
	for i, o := range in.Options {
		q.Options[i] = domain.Option{Text: o.Text, IsCorrect: o.IsCorrect, Explanation: o.Explanation}
	}
	if in.CorrectAnswer != nil {
		q.CorrectAnswer = *in.CorrectAnswer
	} else {
		q.CorrectAnswer = firstFlagged(q.Options)
	}
	return q
}

// ToQuestions converts a batch.
func ToQuestions(in []QuestionInput) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, item := range in {
		out[i] = item.ToQuestion()
	}
	return out
}

// QuestionUpdateInput is a partial update as sent by admins. Absent fields stay unchanged.
type QuestionUpdateInput struct {
	Question       *string            `json:"question"`
	Code           json.RawMessage    `json:"code"`
	Options        []OptionInput      `json:"options" validate:"omitempty,min=2,dive"`
	CorrectAnswer  *int               `json:"correctAnswer" validate:"omitempty,gte=0"`
	Explanation    *string            `json:"explanation"`
	Category       *domain.Category   `json:"category" validate:"omitempty,oneof=course skill interview certification"`
	Difficulty     *domain.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Skill          *string            `json:"skill"`
	Tags           *[]string          `json:"tags"`
	InterviewLevel *string            `json:"interviewLevel"`
	CodeLevel      *string            `json:"codeLevel"`
	CourseID       *string            `json:"courseId"`
	TopicID        *string            `json:"topicId"`
	TechnologyID   *string            `json:"technologyId"`
	Points         *int               `json:"points" validate:"omitempty,gte=0"`
	TimeLimit      *int               `json:"timeLimit" validate:"omitempty,gte=0"`
	IsActive       *bool              `json:"isActive"`
}

// ToPatch converts the input. A JSON null code clears the snippet. New options without an
// explicit correctAnswer move the answer to the first option flagged correct, if any.
func (in QuestionUpdateInput) ToPatch() (QuestionPatch, error) {
	p := QuestionPatch{
		Text:           in.Question,
		CorrectAnswer:  in.CorrectAnswer,
		Explanation:    in.Explanation,
		Category:       in.Category,
		Difficulty:     in.Difficulty,
		Skill:          in.Skill,
		Tags:           in.Tags,
		InterviewLevel: in.InterviewLevel,
		CodeLevel:      in.CodeLevel,
		CourseID:       in.CourseID,
		TopicID:        in.TopicID,
		TechnologyID:   in.TechnologyID,
		Points:         in.Points,
		TimeLimit:      in.TimeLimit,
		IsActive:       in.IsActive,
	}
	if len(in.Code) > 0 {
		var code *domain.CodeSnippet
		if err := json.Unmarshal(in.Code, &code); err != nil {
			return QuestionPatch{}, fmt.Errorf("%w: invalid code snippet", domain.ErrValidation)
		}
		p.Code = &code
	}
	if in.Options != nil {
		p.Options = make([]domain.Option, len(in.Options))
		flagged := -1
		for i, o := range in.Options {
			p.Options[i] = domain.Option{Text: o.Text, IsCorrect: o.IsCorrect, Explanation: o.Explanation}
			if o.IsCorrect && flagged < 0 {
				flagged = i
			}
		}
		if p.CorrectAnswer == nil && flagged >= 0 {
			p.CorrectAnswer = &flagged
		}
	}
	return p, nil
}

func firstFlagged(opts []domain.Option) int {
	for i, o := range opts {
		if o.IsCorrect {
			return i
		}
	}
	return 0
}
