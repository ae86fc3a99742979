package service

import (
	"errors"
	"testing"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/util"
)

func objectiveQuestion(id int, marks float64, correct string) model.Question {
	return model.Question{
		ID:    id,
		Text:  "question",
		Type:  model.QuestionObjective,
		Marks: marks,
		Options: []model.QuestionOption{
			{ID: "a", Text: "A"}, {ID: "b", Text: "B"},
			{ID: "c", Text: "C"}, {ID: "d", Text: "D"},
		},
		CorrectAnswer: correct,
		Explanation:   "because",
	}
}

func subjectiveQuestion(id int, marks float64) model.Question {
	return model.Question{
		ID:    id,
		Text:  "explain",
		Type:  model.QuestionSubjective,
		Marks: marks,
		MarkingScheme: &model.MarkingScheme{
			Points:        []string{"first", "second"},
			MarksPerPoint: []float64{3, 2},
		},
	}
}

func startAttempt(t *testing.T, questions []model.Question, timing model.AnswerTiming) (*QuizService, *QuizAttempt) {
	t.Helper()
	svc := NewQuizService(&fakeChallengeStore{})
	attempt, err := svc.Start(1, "", "test quiz", questions, timing)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return svc, attempt
}

func TestAfterEachObjectiveScoring(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
		objectiveQuestion(2, 5, "b"),
	}, model.TimingAfterEach)

	if err := attempt.Answer("a"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	view := attempt.View()
	q := view.Questions[0]
	if !q.Revealed || q.CorrectAnswer != "a" || q.Explanation == "" {
		t.Errorf("question not revealed after answering: %+v", q)
	}
	if got := attempt.Stats().Score; got != 5 {
		t.Errorf("score = %v, want 5 after correct answer", got)
	}

	// 已揭示的题目不能再次作答，分数不能重复累加
	if err := attempt.Answer("b"); !errors.Is(err, ErrQuestionLocked) {
		t.Errorf("re-answer err = %v, want ErrQuestionLocked", err)
	}
	if got := attempt.Stats().Score; got != 5 {
		t.Errorf("score changed on rejected re-answer: %v", got)
	}

	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := attempt.Answer("d"); err != nil {
		t.Fatalf("Answer q2: %v", err)
	}
	if got := attempt.Stats().Score; got != 5 {
		t.Errorf("wrong answer must not add marks, score = %v", got)
	}

	finished, err := attempt.Next()
	if err != nil || !finished {
		t.Fatalf("final Next = (%v, %v), want finished", finished, err)
	}
	stats := attempt.Stats()
	if stats.CorrectAnswers != 1 || stats.IncorrectAnswers != 1 || stats.ScorePercentage != 50 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAfterEachSubjectiveRevealsWithoutScoring(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		subjectiveQuestion(1, 5),
	}, model.TimingAfterEach)

	if err := attempt.Answer("my long essay"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	view := attempt.View()
	q := view.Questions[0]
	if !q.Revealed {
		t.Error("marking scheme not revealed after explicit submit")
	}
	if q.MarkingScheme == nil {
		t.Error("marking scheme missing from view")
	}
	if got := attempt.Stats().Score; got != 0 {
		t.Errorf("subjective answer scored %v, want 0", got)
	}
}

func TestAtFinalBuffersAndScoresOnce(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
		objectiveQuestion(2, 5, "b"),
		subjectiveQuestion(3, 5),
	}, model.TimingAtFinal)

	if err := attempt.Answer("c"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if attempt.View().Questions[0].Revealed {
		t.Error("at_final revealed before submit")
	}
	if got := attempt.Stats().Score; got != 0 {
		t.Errorf("score accumulated before final submit: %v", got)
	}

	// 终卷前可以改答案
	if err := attempt.Answer("a"); err != nil {
		t.Fatalf("re-answer before submit: %v", err)
	}

	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := attempt.Answer("b"); err != nil {
		t.Fatalf("Answer q2: %v", err)
	}
	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := attempt.Answer("essay text"); err != nil {
		t.Fatalf("Answer q3: %v", err)
	}

	finished, err := attempt.Next()
	if err != nil || !finished {
		t.Fatalf("final Next = (%v, %v)", finished, err)
	}

	stats := attempt.Stats()
	if stats.Score != 10 {
		t.Errorf("score = %v, want 10 (two correct objectives)", stats.Score)
	}
	// 主观题分值计入总分母：10/15 ≈ 67%，满分不可达
	if stats.TotalPossibleScore != 15 {
		t.Errorf("total possible = %v, want 15", stats.TotalPossibleScore)
	}
	if stats.ScorePercentage != 67 {
		t.Errorf("percentage = %v, want 67", stats.ScorePercentage)
	}
	if stats.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", stats.Accuracy)
	}

	view := attempt.View()
	if view.Status != AttemptSubmitted || view.Stats == nil {
		t.Errorf("view after submit = %+v", view)
	}
	for i, q := range view.Questions {
		if !q.Revealed {
			t.Errorf("question %d not revealed after submit", i+1)
		}
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
		objectiveQuestion(2, 5, "b"),
	}, model.TimingAtFinal)

	if _, err := attempt.Next(); !errors.Is(err, ErrAnswerRequired) {
		t.Errorf("Next without answer err = %v, want ErrAnswerRequired", err)
	}
	if err := attempt.Answer(" "); !errors.Is(err, ErrAnswerRequired) {
		t.Errorf("blank answer err = %v, want ErrAnswerRequired", err)
	}
}

func TestNavigationRules(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
		objectiveQuestion(2, 5, "b"),
		objectiveQuestion(3, 5, "c"),
	}, model.TimingAfterEach)

	// 向前跳入未作答区被拒绝
	if err := attempt.Goto(2); !errors.Is(err, ErrNavigationBlocked) {
		t.Errorf("forward jump err = %v, want ErrNavigationBlocked", err)
	}

	_ = attempt.Answer("a")
	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	_ = attempt.Answer("b")

	// 回看再返回，不重新判分
	if err := attempt.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if got := attempt.Stats().Score; got != 10 {
		t.Errorf("score changed on Previous: %v", got)
	}
	if err := attempt.Goto(1); err != nil {
		t.Fatalf("Goto answered question: %v", err)
	}
	// 第 3 题仍未作答，向前跳仍被拒绝
	if err := attempt.Goto(2); !errors.Is(err, ErrNavigationBlocked) {
		t.Errorf("jump past answered territory err = %v", err)
	}

	if err := attempt.Goto(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out of range err = %v", err)
	}
	if err := attempt.Goto(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("negative index err = %v", err)
	}
}

func TestRetryResetsSameQuestions(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
	}, model.TimingAfterEach)

	if err := attempt.Retry(); !errors.Is(err, util.ErrAttemptNotFinished) {
		t.Errorf("Retry before submit err = %v, want ErrAttemptNotFinished", err)
	}

	_ = attempt.Answer("a")
	if _, err := attempt.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if attempt.Stats().Score != 5 {
		t.Fatalf("precondition: score 5")
	}

	if err := attempt.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	view := attempt.View()
	if view.Status != AttemptActive || view.CurrentIndex != 0 {
		t.Errorf("view after retry = %+v", view)
	}
	if attempt.Stats().Score != 0 {
		t.Errorf("score not reset: %v", attempt.Stats().Score)
	}
	if len(view.Questions) != 1 || view.Questions[0].Answered {
		t.Errorf("questions not reset: %+v", view.Questions)
	}
	// 同一套题可以重新得分
	if err := attempt.Answer("a"); err != nil {
		t.Fatalf("Answer after retry: %v", err)
	}
	if attempt.Stats().Score != 5 {
		t.Errorf("rescore after retry failed")
	}
}

func TestSubmittedAttemptLocked(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
	}, model.TimingAfterEach)

	_ = attempt.Answer("a")
	if err := attempt.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := attempt.Answer("b"); !errors.Is(err, util.ErrAttemptSubmitted) {
		t.Errorf("Answer after submit err = %v", err)
	}
	if _, err := attempt.Next(); !errors.Is(err, util.ErrAttemptSubmitted) {
		t.Errorf("Next after submit err = %v", err)
	}
	if err := attempt.Submit(); !errors.Is(err, util.ErrAttemptSubmitted) {
		t.Errorf("double submit err = %v", err)
	}
}

func TestViewHidesAnswersUntilRevealed(t *testing.T) {
	_, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
	}, model.TimingAtFinal)

	q := attempt.View().Questions[0]
	if q.CorrectAnswer != "" || q.Explanation != "" {
		t.Errorf("unrevealed view leaks answer: %+v", q)
	}
	if len(q.Options) != 4 {
		t.Errorf("options missing from view")
	}
}

func TestQuizServiceRegistry(t *testing.T) {
	svc, attempt := startAttempt(t, []model.Question{
		objectiveQuestion(1, 5, "a"),
	}, model.TimingAfterEach)

	if _, err := svc.Get(attempt.ID, 1); err != nil {
		t.Errorf("Get: %v", err)
	}
	if _, err := svc.Get(attempt.ID, 2); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("foreign user Get err = %v, want ErrAttemptNotFound", err)
	}
	if _, err := svc.Get("missing", 1); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("missing Get err = %v", err)
	}

	if err := svc.Quit(attempt.ID, 1); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	if _, err := svc.Get(attempt.ID, 1); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("attempt survived Quit")
	}
}

func TestStartValidation(t *testing.T) {
	svc := NewQuizService(&fakeChallengeStore{})
	if _, err := svc.Start(1, "", "t", nil, model.TimingAfterEach); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("empty questions err = %v", err)
	}
	if _, err := svc.Start(1, "", "t", []model.Question{objectiveQuestion(1, 5, "a")}, "sometimes"); !errors.Is(err, ErrBadAnswerTiming) {
		t.Errorf("bad timing err = %v", err)
	}
}
