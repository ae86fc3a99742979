package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chatgenius_backend/internal/model"
	"chatgenius_backend/internal/util"
)

type fakeChatSession struct {
	replies   []string
	sendErr   error
	sent      []string
	onSend    func()
	turns     []ChatTurn
	histEmpty bool
}

func (f *fakeChatSession) SendMessage(_ context.Context, text string) (string, error) {
	f.sent = append(f.sent, text)
	if f.onSend != nil {
		f.onSend()
	}
	if f.sendErr != nil {
		return "", f.sendErr
	}
	reply := "ok"
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	if !f.histEmpty {
		f.turns = append(f.turns, ChatTurn{Role: "user", Text: text}, ChatTurn{Role: "model", Text: reply})
	}
	return reply, nil
}

func (f *fakeChatSession) History(_ context.Context) []ChatTurn {
	return f.turns
}

type fakeChatStarter struct {
	session *fakeChatSession
	err     error
	started int
}

func (f *fakeChatStarter) StartChat(_ context.Context, _ string, _ []ChatTurn) (ChatSession, error) {
	f.started++
	if f.err != nil {
		return nil, f.err
	}
	if f.session == nil {
		return &fakeChatSession{}, nil
	}
	return f.session, nil
}

type fakeMessageStore struct {
	messages  []model.Message
	createErr error
}

func (f *fakeMessageStore) Create(msg *model.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageStore) ListByBucket(userID uint, bucketID string) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.messages {
		if m.UserID == userID && m.CharacterID == bucketID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteByBucket(userID uint, bucketID string) error {
	var kept []model.Message
	for _, m := range f.messages {
		if m.UserID != userID || m.CharacterID != bucketID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

func newTestChatService(session *fakeChatSession) (*ChatService, *fakeMessageStore) {
	store := &fakeMessageStore{}
	return NewChatService(&fakeChatStarter{session: session}, store), store
}

func TestChatSendPrependsInstructionOnFirstMessage(t *testing.T) {
	ctx := context.Background()
	session := &fakeChatSession{replies: []string{"hello there", "second reply"}}
	svc, _ := newTestChatService(session)

	if err := svc.StartSession(ctx, 1, model.DefaultCharacterID, "You are Sage."); err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	reply, err := svc.Send(ctx, 1, "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply != "hello there" {
		t.Errorf("reply = %q", reply)
	}
	if want := "You are Sage.\n\nUser: hi"; session.sent[0] != want {
		t.Errorf("first outgoing = %q, want %q", session.sent[0], want)
	}

	if _, err := svc.Send(ctx, 1, "again"); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if session.sent[1] != "again" {
		t.Errorf("second outgoing = %q, instruction must not repeat", session.sent[1])
	}
}

func TestChatSendWithoutInstruction(t *testing.T) {
	ctx := context.Background()
	session := &fakeChatSession{}
	svc, _ := newTestChatService(session)

	if err := svc.StartSession(ctx, 1, model.DefaultCharacterID, ""); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := svc.Send(ctx, 1, "plain"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if session.sent[0] != "plain" {
		t.Errorf("outgoing = %q, want raw text", session.sent[0])
	}
}

func TestChatSendErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no active session", func(t *testing.T) {
		svc, _ := newTestChatService(nil)
		if _, err := svc.Send(ctx, 7, "hi"); !errors.Is(err, ErrNoActiveSession) {
			t.Errorf("err = %v, want ErrNoActiveSession", err)
		}
	})

	t.Run("blank message rejected", func(t *testing.T) {
		svc, _ := newTestChatService(&fakeChatSession{})
		_ = svc.StartSession(ctx, 1, model.DefaultCharacterID, "")
		if _, err := svc.Send(ctx, 1, "   "); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("err = %v, want ErrEmptyMessage", err)
		}
	})

	t.Run("gateway failure maps to generic message", func(t *testing.T) {
		session := &fakeChatSession{sendErr: errors.New("rpc broke")}
		svc, _ := newTestChatService(session)
		_ = svc.StartSession(ctx, 1, model.DefaultCharacterID, "")
		_, err := svc.Send(ctx, 1, "hi")
		if !errors.Is(err, util.ErrAIUnavailable) {
			t.Fatalf("err = %v, want ErrAIUnavailable", err)
		}
		if !strings.Contains(err.Error(), "Failed to get response from AI") {
			t.Errorf("client message = %q", err.Error())
		}
	})
}

func TestChatStaleReplyDiscarded(t *testing.T) {
	ctx := context.Background()
	session := &fakeChatSession{}
	starter := &fakeChatStarter{session: session}
	store := &fakeMessageStore{}
	svc := NewChatService(starter, store)

	if err := svc.StartSession(ctx, 1, "char-a", ""); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	// 回复返回之前会话被替换
	session.onSend = func() {
		starter.session = &fakeChatSession{}
		if err := svc.StartSession(ctx, 1, "char-b", "new persona"); err != nil {
			t.Fatalf("restart: %v", err)
		}
	}

	if _, err := svc.Send(ctx, 1, "hi"); !errors.Is(err, ErrSessionSuperseded) {
		t.Fatalf("err = %v, want ErrSessionSuperseded", err)
	}
	// 丢弃的回复不得落库
	for _, m := range store.messages {
		if m.Sender == model.SenderBot {
			t.Errorf("stale bot reply persisted: %q", m.Content)
		}
	}
}

func TestChatMessagesPersisted(t *testing.T) {
	ctx := context.Background()
	session := &fakeChatSession{replies: []string{"pong"}}
	svc, _ := newTestChatService(session)

	_ = svc.StartSession(ctx, 3, "char-x", "")
	if _, err := svc.Send(ctx, 3, "ping"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs, _ := svc.ListMessages(ctx, 3, "char-x")
	if len(msgs) != 2 {
		t.Fatalf("persisted %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != model.SenderUser || msgs[0].Content != "ping" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Sender != model.SenderBot || msgs[1].Content != "pong" {
		t.Errorf("second message = %+v", msgs[1])
	}

	if err := svc.ClearMessages(ctx, 3, "char-x"); err != nil {
		t.Fatalf("ClearMessages: %v", err)
	}
	msgs, _ = svc.ListMessages(ctx, 3, "char-x")
	if len(msgs) != 0 {
		t.Errorf("bucket not cleared, %d left", len(msgs))
	}
}

func TestChatHistoryEmptyWithoutSession(t *testing.T) {
	svc, _ := newTestChatService(nil)
	if turns := svc.History(context.Background(), 9); len(turns) != 0 {
		t.Errorf("history = %v, want empty", turns)
	}
}

func TestChatEndSessionDropsState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestChatService(&fakeChatSession{})
	_ = svc.StartSession(ctx, 1, model.DefaultCharacterID, "")
	svc.EndSession(1)
	if _, err := svc.Send(ctx, 1, "hi"); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession after EndSession", err)
	}
}
