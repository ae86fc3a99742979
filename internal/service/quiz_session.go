package service

import (
	"errors"
	"math"
	"strings"
	"sync"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/util"
)

var (
	ErrNoQuestions       = errors.New("题目列表为空")
	ErrAnswerRequired    = errors.New("请先作答当前题目")
	ErrQuestionLocked    = errors.New("该题已揭示答案，不能重复作答")
	ErrNavigationBlocked = errors.New("不能跳转到未作答的后续题目")
	ErrIndexOutOfRange   = errors.New("题目序号越界")
)

type AttemptStatus string

const (
	AttemptActive    AttemptStatus = "active"
	AttemptSubmitted AttemptStatus = "submitted"
)

// QuestionProgress 单题作答状态。
// Revealed 之后该题锁定，分数不会重复累加。
type QuestionProgress struct {
	Answer   string `json:"answer,omitempty"`
	Answered bool   `json:"answered"`
	Revealed bool   `json:"revealed"`
}

// QuizAttempt 一次作答，纯内存态，退出即丢弃
type QuizAttempt struct {
	ID           string
	UserID       uint
	ChallengeID  string
	Title        string
	Questions    []model.Question
	AnswerTiming model.AnswerTiming

	mu       sync.Mutex
	status   AttemptStatus
	current  int
	progress []QuestionProgress
	score    float64
}

func newQuizAttempt(id string, userID uint, challengeID, title string, questions []model.Question, timing model.AnswerTiming) *QuizAttempt {
	return &QuizAttempt{
		ID:           id,
		UserID:       userID,
		ChallengeID:  challengeID,
		Title:        title,
		Questions:    questions,
		AnswerTiming: timing,
		status:       AttemptActive,
		progress:     make([]QuestionProgress, len(questions)),
	}
}

// Answer 对当前题目作答。
// after_each：客观题立即判分并揭示；主观题的提交即揭示评分标准，不计分。
// at_final：只记录答案，终卷前可反复修改。
func (a *QuizAttempt) Answer(answer string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == AttemptSubmitted {
		return util.ErrAttemptSubmitted
	}
	if strings.TrimSpace(answer) == "" {
		return ErrAnswerRequired
	}

	q := a.Questions[a.current]
	p := &a.progress[a.current]

	if a.AnswerTiming == model.TimingAfterEach {
		if p.Revealed {
			return ErrQuestionLocked
		}
		p.Answer = answer
		p.Answered = true
		p.Revealed = true
		if q.Type == model.QuestionObjective && answer == q.CorrectAnswer {
			a.score += q.Marks
		}
		return nil
	}

	p.Answer = answer
	p.Answered = true
	return nil
}

// Next 前进一题；在最后一题上等价于终卷提交。
// 当前题未作答时拒绝前进。
func (a *QuizAttempt) Next() (finished bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == AttemptSubmitted {
		return false, util.ErrAttemptSubmitted
	}
	if !a.progress[a.current].Answered {
		return false, ErrAnswerRequired
	}
	if a.current < len(a.Questions)-1 {
		a.current++
		return false, nil
	}
	a.finalizeLocked()
	return true, nil
}

// Previous 回看上一题，永不重新判分
func (a *QuizAttempt) Previous() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == AttemptSubmitted {
		return util.ErrAttemptSubmitted
	}
	if a.current > 0 {
		a.current--
	}
	return nil
}

// Goto 点状导航跳题：向前只能跳入已作答的题目，向后不限
func (a *QuizAttempt) Goto(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == AttemptSubmitted {
		return util.ErrAttemptSubmitted
	}
	if index < 0 || index >= len(a.Questions) {
		return ErrIndexOutOfRange
	}
	if index > a.current && !a.progress[index].Answered {
		return ErrNavigationBlocked
	}
	a.current = index
	return nil
}

// Submit 终卷。at_final 在此一次性判分；after_each 沿用已累计的分数
func (a *QuizAttempt) Submit() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status == AttemptSubmitted {
		return util.ErrAttemptSubmitted
	}
	a.finalizeLocked()
	return nil
}

func (a *QuizAttempt) finalizeLocked() {
	if a.AnswerTiming == model.TimingAtFinal {
		var total float64
		for i, q := range a.Questions {
			if q.Type == model.QuestionObjective && a.progress[i].Answer == q.CorrectAnswer {
				total += q.Marks
			}
		}
		a.score = total
	}
	for i := range a.progress {
		a.progress[i].Revealed = true
	}
	a.status = AttemptSubmitted
}

// Retry 同一套题重新开始，清空全部作答与分数
func (a *QuizAttempt) Retry() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status != AttemptSubmitted {
		return util.ErrAttemptNotFinished
	}
	a.status = AttemptActive
	a.current = 0
	a.score = 0
	a.progress = make([]QuestionProgress, len(a.Questions))
	return nil
}

// QuizStats 终卷统计。总分母包含主观题分值，
// 主观题只记 0 分，满分百分比因此可能达不到 100。
type QuizStats struct {
	TotalQuestions      int     `json:"totalQuestions"`
	ObjectiveQuestions  int     `json:"objectiveQuestions"`
	SubjectiveQuestions int     `json:"subjectiveQuestions"`
	CorrectAnswers      int     `json:"correctAnswers"`
	IncorrectAnswers    int     `json:"incorrectAnswers"`
	Score               float64 `json:"score"`
	TotalPossibleScore  float64 `json:"totalPossibleScore"`
	Accuracy            int     `json:"accuracy"`
	ScorePercentage     int     `json:"scorePercentage"`
}

// Stats 汇总当前作答情况
func (a *QuizAttempt) Stats() QuizStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := QuizStats{TotalQuestions: len(a.Questions), Score: a.score}
	for i, q := range a.Questions {
		stats.TotalPossibleScore += q.Marks
		if q.Type == model.QuestionObjective {
			stats.ObjectiveQuestions++
			if a.progress[i].Answer == q.CorrectAnswer {
				stats.CorrectAnswers++
			}
		} else {
			stats.SubjectiveQuestions++
		}
	}
	stats.IncorrectAnswers = stats.ObjectiveQuestions - stats.CorrectAnswers
	if stats.ObjectiveQuestions > 0 {
		stats.Accuracy = int(math.Round(float64(stats.CorrectAnswers) / float64(stats.ObjectiveQuestions) * 100))
	}
	if stats.TotalPossibleScore > 0 {
		stats.ScorePercentage = int(math.Round(a.score / stats.TotalPossibleScore * 100))
	}
	return stats
}

// QuestionView 返回给客户端的单题视图。
// 正确答案与解析只在该题揭示后携带；主观题评分标准随时可见。
type QuestionView struct {
	ID            int                   `json:"id"`
	Text          string                `json:"text"`
	Type          model.QuestionType    `json:"type"`
	Marks         float64               `json:"marks"`
	Options       []model.QuestionOption `json:"options,omitempty"`
	MarkingScheme *model.MarkingScheme  `json:"markingScheme,omitempty"`
	Answered      bool                  `json:"answered"`
	Revealed      bool                  `json:"revealed"`
	Answer        string                `json:"answer,omitempty"`
	CorrectAnswer string                `json:"correctAnswer,omitempty"`
	Explanation   string                `json:"explanation,omitempty"`
}

// AttemptView 作答快照
type AttemptView struct {
	ID           string             `json:"id"`
	ChallengeID  string             `json:"challengeId,omitempty"`
	Title        string             `json:"title"`
	Status       AttemptStatus      `json:"status"`
	AnswerTiming model.AnswerTiming `json:"answerTiming"`
	CurrentIndex int                `json:"currentIndex"`
	Questions    []QuestionView     `json:"questions"`
	Stats        *QuizStats         `json:"stats,omitempty"`
}

// View 生成快照；终卷后附带统计并公开全部答案
func (a *QuizAttempt) View() AttemptView {
	a.mu.Lock()
	status := a.status
	current := a.current
	views := make([]QuestionView, len(a.Questions))
	for i, q := range a.Questions {
		p := a.progress[i]
		v := QuestionView{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Marks:    q.Marks,
			Options:  q.Options,
			Answered: p.Answered,
			Revealed: p.Revealed,
			Answer:   p.Answer,
		}
		if q.Type == model.QuestionSubjective {
			v.MarkingScheme = q.MarkingScheme
		}
		if p.Revealed {
			v.CorrectAnswer = q.CorrectAnswer
			v.Explanation = q.Explanation
		}
		views[i] = v
	}
	a.mu.Unlock()

	view := AttemptView{
		ID:           a.ID,
		ChallengeID:  a.ChallengeID,
		Title:        a.Title,
		Status:       status,
		AnswerTiming: a.AnswerTiming,
		CurrentIndex: current,
		Questions:    views,
	}
	if status == AttemptSubmitted {
		stats := a.Stats()
		view.Stats = &stats
	}
	return view
}
