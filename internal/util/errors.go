package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCharacterNotFound  = errors.New("character not found")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrAttemptSubmitted   = errors.New("attempt already submitted")
	ErrAttemptNotFinished = errors.New("attempt not submitted yet")

	// ErrAPIKeyMissing AI 凭证缺失，任何触网操作前快速失败
	ErrAPIKeyMissing = errors.New("Gemini API key not found. Please set GEMINI_API_KEY in your environment variables.")
	// ErrAIUnavailable 网关失败后对外的统一提示，细节只记日志
	ErrAIUnavailable = errors.New("Failed to get response from AI. Please try again.")
)
