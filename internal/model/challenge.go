package model

import (
	"encoding/json"
)

type ChallengeSource string

const (
	SourceDocument ChallengeSource = "document"
	SourceTopic    ChallengeSource = "topic"
)

type QuestionType string

const (
	QuestionObjective  QuestionType = "objective"
	QuestionSubjective QuestionType = "subjective"
)

type AnswerTiming string

const (
	// TimingAfterEach 每题作答后立即揭示答案/评分标准
	TimingAfterEach AnswerTiming = "after_each"
	// TimingAtFinal 全部提交后统一揭示并计分
	TimingAtFinal AnswerTiming = "at_final"
)

// Challenge 一次生成的测验挑战，questions 列保存管道校验后的规范 JSON
type Challenge struct {
	UUIDBase
	UserID            uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Title             string          `gorm:"size:255;not null" json:"title"`
	Source            ChallengeSource `gorm:"size:20;not null" json:"source"`
	Topic             string          `gorm:"size:255" json:"topic,omitempty"`
	DocumentURL       string          `gorm:"size:255" json:"documentUrl,omitempty"`
	QuestionType      QuestionType    `gorm:"size:20;not null" json:"questionType"`
	NumberOfQuestions int             `gorm:"not null" json:"numberOfQuestions"`
	AnswerTiming      AnswerTiming    `gorm:"size:20;not null" json:"answerTiming"`
	CustomInstruction string          `gorm:"type:text" json:"customInstruction,omitempty"`
	Questions         json.RawMessage `gorm:"type:json" json:"questions"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// QuestionOption 客观题选项，id 取 a/b/c/d
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MarkingScheme 主观题评分标准，points 与 marksPerPoint 等长对应
type MarkingScheme struct {
	Points        []string  `json:"points"`
	MarksPerPoint []float64 `json:"marksPerPoint"`
}

// Question 生成的题目，生成后不可变
type Question struct {
	ID    int          `json:"id"`
	Text  string       `json:"text"`
	Type  QuestionType `json:"type"`
	Marks float64      `json:"marks"`

	// objective 专有
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer string           `json:"correctAnswer,omitempty"`
	Explanation   string           `json:"explanation,omitempty"`

	// subjective 专有
	MarkingScheme *MarkingScheme `json:"markingScheme,omitempty"`
}

// QuestionSet 管道对外的唯一载荷结构
type QuestionSet struct {
	Questions []Question `json:"questions"`
}
