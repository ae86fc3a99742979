package service

import (
	"encoding/json"
	"sync"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/util"

	"github.com/google/uuid"
)

// QuizService 作答注册表。作答是纯内存态，
// 服务重启或用户退出后即消失，只有挑战本身持久化。
type QuizService struct {
	challenges ChallengeStore

	mu       sync.RWMutex
	attempts map[string]*QuizAttempt
}

func NewQuizService(challenges ChallengeStore) *QuizService {
	return &QuizService{
		challenges: challenges,
		attempts:   make(map[string]*QuizAttempt),
	}
}

// StartFromChallenge 基于已保存的挑战开始作答
func (s *QuizService) StartFromChallenge(userID uint, challengeID string) (*QuizAttempt, error) {
	ch, err := s.challenges.FindByID(challengeID, userID)
	if err != nil {
		return nil, util.ErrChallengeNotFound
	}

	var set model.QuestionSet
	if err := json.Unmarshal(ch.Questions, &set); err != nil {
		return nil, err
	}
	return s.Start(userID, ch.ID, ch.Title, set.Questions, ch.AnswerTiming)
}

// Start 以一组题目开始作答
func (s *QuizService) Start(userID uint, challengeID, title string, questions []model.Question, timing model.AnswerTiming) (*QuizAttempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if timing != model.TimingAfterEach && timing != model.TimingAtFinal {
		return nil, ErrBadAnswerTiming
	}

	attempt := newQuizAttempt(uuid.New().String(), userID, challengeID, title, questions, timing)
	s.mu.Lock()
	s.attempts[attempt.ID] = attempt
	s.mu.Unlock()
	return attempt, nil
}

// Get 取回作答，非本人不可见
func (s *QuizService) Get(id string, userID uint) (*QuizAttempt, error) {
	s.mu.RLock()
	attempt, ok := s.attempts[id]
	s.mu.RUnlock()
	if !ok || attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// Quit 放弃作答，进度直接丢弃
func (s *QuizService) Quit(id string, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok || attempt.UserID != userID {
		return util.ErrAttemptNotFound
	}
	delete(s.attempts, id)
	return nil
}
