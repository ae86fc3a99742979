package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"chatgenius_backend/internal/model"
)

const validObjectiveSet = `{
  "questions": [
    {
      "id": 1,
      "text": "What is 2+2?",
      "type": "objective",
      "marks": 5,
      "options": [
        {"id": "a", "text": "3"},
        {"id": "b", "text": "4"},
        {"id": "c", "text": "5"},
        {"id": "d", "text": "22"}
      ],
      "correctAnswer": "b",
      "explanation": "Basic addition."
    }
  ]
}`

const validSubjectiveSet = `{
  "questions": [
    {
      "id": 1,
      "text": "Explain photosynthesis.",
      "type": "subjective",
      "marks": 5,
      "markingScheme": {
        "points": ["Light reaction", "Dark reaction"],
        "marksPerPoint": [3, 2]
      }
    }
  ]
}`

func TestValidateQuestions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid objective set", input: validObjectiveSet},
		{name: "valid subjective set", input: validSubjectiveSet},
		{name: "fenced json recovered", input: "```json\n" + validObjectiveSet + "\n```"},
		{
			name:    "garbage input",
			input:   "Sure! Here are your questions: none",
			wantErr: "Invalid JSON format in response",
		},
		{
			name:    "missing questions array",
			input:   `{"items": []}`,
			wantErr: "missing questions array",
		},
		{
			name:    "missing required fields",
			input:   `{"questions": [{"id": 0, "text": "q", "type": "objective", "marks": 5}]}`,
			wantErr: "Question 1 is missing required fields",
		},
		{
			name: "three options rejected",
			input: `{"questions": [{"id": 1, "text": "q", "type": "objective", "marks": 5,
				"options": [{"id":"a","text":"1"},{"id":"b","text":"2"},{"id":"c","text":"3"}],
				"correctAnswer": "a", "explanation": "e"}]}`,
			wantErr: "Question 1 must have exactly 4 options",
		},
		{
			name: "objective without explanation",
			input: `{"questions": [{"id": 1, "text": "q", "type": "objective", "marks": 5,
				"options": [{"id":"a","text":"1"},{"id":"b","text":"2"},{"id":"c","text":"3"},{"id":"d","text":"4"}],
				"correctAnswer": "a"}]}`,
			wantErr: "Question 1 is missing correctAnswer or explanation",
		},
		{
			name: "subjective missing scheme",
			input: `{"questions": [{"id": 1, "text": "q", "type": "subjective", "marks": 5}]}`,
			wantErr: "Question 1 has invalid marking scheme",
		},
		{
			name: "mismatched marking arrays second question",
			input: `{"questions": [
				{"id": 1, "text": "q1", "type": "subjective", "marks": 5,
				 "markingScheme": {"points": ["a"], "marksPerPoint": [5]}},
				{"id": 2, "text": "q2", "type": "subjective", "marks": 5,
				 "markingScheme": {"points": ["a", "b"], "marksPerPoint": [5]}}]}`,
			wantErr: "Question 2 has mismatched points and marks arrays",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateQuestions(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("want error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("err = %q, want contains %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var set model.QuestionSet
			if err := json.Unmarshal([]byte(got), &set); err != nil {
				t.Fatalf("canonical output not parseable: %v", err)
			}
			if len(set.Questions) != 1 {
				t.Errorf("canonical set has %d questions, want 1", len(set.Questions))
			}
		})
	}
}

type fakeGenerator struct {
	prompts [][]ContentPart
	replies []string
	errs    []error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts []ContentPart) (string, error) {
	call := len(f.prompts)
	f.prompts = append(f.prompts, parts)
	if call < len(f.errs) && f.errs[call] != nil {
		return "", f.errs[call]
	}
	if call < len(f.replies) {
		return f.replies[call], nil
	}
	return "", errors.New("unexpected call")
}

type fakeChallengeStore struct {
	created []*model.Challenge
}

func (f *fakeChallengeStore) Create(ch *model.Challenge) error {
	ch.ID = "challenge-1"
	f.created = append(f.created, ch)
	return nil
}

func (f *fakeChallengeStore) FindByID(id string, userID uint) (*model.Challenge, error) {
	for _, ch := range f.created {
		if ch.ID == id && ch.UserID == userID {
			return ch, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeChallengeStore) ListByOwner(userID uint, limit, offset int) ([]model.Challenge, error) {
	var out []model.Challenge
	for _, ch := range f.created {
		if ch.UserID == userID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f *fakeChallengeStore) Delete(id string, userID uint) error { return nil }

type fakeStorer struct {
	stored []string
	url    string
	err    error
}

func (f *fakeStorer) Store(_ context.Context, data []byte, filename, contentType string) (string, error) {
	f.stored = append(f.stored, filename)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func objectiveRequest() *ChallengeRequest {
	return &ChallengeRequest{
		QuestionType:      model.QuestionObjective,
		NumberOfQuestions: 5,
		AnswerTiming:      model.TimingAfterEach,
	}
}

func TestGenerateFromTopicTwoCallSequence(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"analysis of calculus", validObjectiveSet}}
	store := &fakeChallengeStore{}
	svc := NewChallengeService(gen, store, nil)

	req := objectiveRequest()
	req.Topic = "Calculus"
	req.CustomInstruction = "focus on limits"

	ch, err := svc.GenerateFromTopic(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("GenerateFromTopic: %v", err)
	}

	if len(gen.prompts) != 2 {
		t.Fatalf("made %d model calls, want 2", len(gen.prompts))
	}
	first := gen.prompts[0][0].Text
	if !strings.Contains(first, "Topic: Calculus") || !strings.Contains(first, "identify key areas to test") {
		t.Errorf("first call is not the analysis prompt:\n%s", first)
	}
	second := gen.prompts[1][0].Text
	if !strings.Contains(second, "Topic Analysis:\nanalysis of calculus") {
		t.Errorf("second prompt does not embed the analysis")
	}
	if !strings.Contains(second, "Additional Guidelines:") {
		t.Errorf("second prompt missing pedagogy guidelines")
	}
	if !strings.Contains(second, "focus on limits") {
		t.Errorf("second prompt dropped the custom instruction")
	}
	if !strings.Contains(second, "Generate 5 multiple-choice questions") {
		t.Errorf("second prompt wrong header:\n%s", second[:120])
	}

	if len(store.created) != 1 {
		t.Fatalf("persisted %d challenges, want 1", len(store.created))
	}
	if ch.Source != model.SourceTopic || ch.Topic != "Calculus" || ch.Title != "Calculus" {
		t.Errorf("challenge record = %+v", ch)
	}
	var set model.QuestionSet
	if err := json.Unmarshal(ch.Questions, &set); err != nil {
		t.Fatalf("stored questions not canonical JSON: %v", err)
	}
}

func TestGenerateFromTopicErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty topic rejected before any call", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
		req := objectiveRequest()
		req.Topic = "  "
		if _, err := svc.GenerateFromTopic(ctx, 1, req); !errors.Is(err, ErrTopicRequired) {
			t.Errorf("err = %v, want ErrTopicRequired", err)
		}
		if len(gen.prompts) != 0 {
			t.Errorf("model called despite invalid request")
		}
	})

	t.Run("question count out of range", func(t *testing.T) {
		svc := NewChallengeService(&fakeGenerator{}, &fakeChallengeStore{}, nil)
		for _, n := range []int{0, 26, -1} {
			req := objectiveRequest()
			req.Topic = "Algebra"
			req.NumberOfQuestions = n
			if _, err := svc.GenerateFromTopic(ctx, 1, req); !errors.Is(err, ErrBadQuestionCount) {
				t.Errorf("count %d: err = %v, want ErrBadQuestionCount", n, err)
			}
		}
	})

	t.Run("analysis failure maps to generic error", func(t *testing.T) {
		gen := &fakeGenerator{errs: []error{errors.New("boom")}}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
		req := objectiveRequest()
		req.Topic = "Algebra"
		if _, err := svc.GenerateFromTopic(ctx, 1, req); !errors.Is(err, ErrTopicProcessing) {
			t.Errorf("err = %v, want ErrTopicProcessing", err)
		}
	})

	t.Run("invalid questions propagate descriptive error", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{"analysis", `{"questions": "nope"}`}}
		store := &fakeChallengeStore{}
		svc := NewChallengeService(gen, store, nil)
		req := objectiveRequest()
		req.Topic = "Algebra"
		_, err := svc.GenerateFromTopic(ctx, 1, req)
		if err == nil || !strings.Contains(err.Error(), "missing questions array") {
			t.Errorf("err = %v", err)
		}
		if len(store.created) != 0 {
			t.Errorf("invalid challenge persisted")
		}
	})
}

func TestGenerateFromDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("pdf goes multimodal with document prompt", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{validObjectiveSet}}
		store := &fakeChallengeStore{}
		storer := &fakeStorer{url: "http://storage/doc.pdf"}
		svc := NewChallengeService(gen, store, storer)

		data := []byte("%PDF-1.4 fake")
		ch, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), data, "notes.pdf", "application/pdf")
		if err != nil {
			t.Fatalf("GenerateFromDocument: %v", err)
		}
		if len(gen.prompts) != 1 {
			t.Fatalf("made %d calls, want 1", len(gen.prompts))
		}
		parts := gen.prompts[0]
		if len(parts) != 2 {
			t.Fatalf("sent %d parts, want prompt + attachment", len(parts))
		}
		if !strings.Contains(parts[0].Text, "Analyze the PDF document provided") {
			t.Errorf("wrong prompt for pdf")
		}
		if parts[1].MIMEType != "application/pdf" || len(parts[1].Data) == 0 {
			t.Errorf("attachment part = %+v", parts[1])
		}
		if ch.DocumentURL != "http://storage/doc.pdf" {
			t.Errorf("document url = %q", ch.DocumentURL)
		}
		if len(storer.stored) != 1 || storer.stored[0] != "notes.pdf" {
			t.Errorf("document not archived: %v", storer.stored)
		}
	})

	t.Run("image uses image prompt", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{validObjectiveSet}}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
		_, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), []byte{0xFF, 0xD8}, "scan.jpg", "image/jpeg")
		if err != nil {
			t.Fatalf("GenerateFromDocument: %v", err)
		}
		if !strings.Contains(gen.prompts[0][0].Text, "Analyze the image provided") {
			t.Errorf("wrong prompt for image")
		}
	})

	t.Run("plain text inlined into content prompt", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{validObjectiveSet}}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
		_, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), []byte("the mitochondria is the powerhouse"), "bio.txt", "text/plain; charset=utf-8")
		if err != nil {
			t.Fatalf("GenerateFromDocument: %v", err)
		}
		parts := gen.prompts[0]
		if len(parts) != 1 {
			t.Fatalf("plain text should be a single text part, got %d parts", len(parts))
		}
		if !strings.Contains(parts[0].Text, "the mitochondria is the powerhouse") {
			t.Errorf("document text not embedded in prompt")
		}
	})

	t.Run("unsupported mime rejected", func(t *testing.T) {
		gen := &fakeGenerator{}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
		_, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), []byte{1, 2}, "a.zip", "application/zip")
		if !errors.Is(err, ErrUnsupportedDocument) {
			t.Errorf("err = %v, want ErrUnsupportedDocument", err)
		}
		if len(gen.prompts) != 0 {
			t.Errorf("model called for unsupported document")
		}
	})

	t.Run("empty file rejected", func(t *testing.T) {
		svc := NewChallengeService(&fakeGenerator{}, &fakeChallengeStore{}, nil)
		_, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), nil, "a.pdf", "application/pdf")
		if !errors.Is(err, ErrDocumentRequired) {
			t.Errorf("err = %v, want ErrDocumentRequired", err)
		}
	})

	t.Run("archive failure does not block generation", func(t *testing.T) {
		gen := &fakeGenerator{replies: []string{validObjectiveSet}}
		storer := &fakeStorer{err: errors.New("bucket down")}
		svc := NewChallengeService(gen, &fakeChallengeStore{}, storer)
		ch, err := svc.GenerateFromDocument(ctx, 2, objectiveRequest(), []byte("%PDF"), "a.pdf", "application/pdf")
		if err != nil {
			t.Fatalf("GenerateFromDocument: %v", err)
		}
		if ch.DocumentURL != "" {
			t.Errorf("document url should be empty after archive failure")
		}
	})
}

func TestSubjectivePromptShape(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"analysis", validSubjectiveSet}}
	svc := NewChallengeService(gen, &fakeChallengeStore{}, nil)
	req := &ChallengeRequest{
		QuestionType:      model.QuestionSubjective,
		NumberOfQuestions: 3,
		AnswerTiming:      model.TimingAtFinal,
		Topic:             "Thermodynamics",
	}
	if _, err := svc.GenerateFromTopic(context.Background(), 1, req); err != nil {
		t.Fatalf("GenerateFromTopic: %v", err)
	}
	prompt := gen.prompts[1][0].Text
	if !strings.Contains(prompt, "Generate 3 open-ended questions") {
		t.Errorf("subjective prompt header wrong")
	}
	if !strings.Contains(prompt, `"markingScheme"`) || strings.Contains(prompt, `"correctAnswer": "a",`) {
		t.Errorf("subjective prompt schema block wrong")
	}
}
