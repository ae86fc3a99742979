package service

import (
	"strings"
	"testing"

	"chatgenius_backend/internal/model"
)

func validCharacterInput() *CharacterInput {
	return &CharacterInput{
		Name:        "Nova",
		Description: "Space enthusiast who loves the cosmos",
		Mood:        "enthusiastic",
		VoiceTone:   "storyteller",
		Skills:      []string{"science"},
	}
}

func TestCharacterInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CharacterInput)
		wantErr string
	}{
		{name: "valid input", mutate: func(in *CharacterInput) {}},
		{
			name:    "empty name",
			mutate:  func(in *CharacterInput) { in.Name = "  " },
			wantErr: "Character name is required",
		},
		{
			name:    "name too short",
			mutate:  func(in *CharacterInput) { in.Name = "X" },
			wantErr: "at least 2 characters",
		},
		{
			name:    "name too long",
			mutate:  func(in *CharacterInput) { in.Name = strings.Repeat("n", 31) },
			wantErr: "less than 30 characters",
		},
		{
			name:    "missing mood",
			mutate:  func(in *CharacterInput) { in.Mood = "" },
			wantErr: "select a mood",
		},
		{
			name:    "no skills",
			mutate:  func(in *CharacterInput) { in.Skills = nil },
			wantErr: "at least one skill",
		},
		{
			name:    "too many skills",
			mutate:  func(in *CharacterInput) { in.Skills = make([]string, 11) },
			wantErr: "at most 10 skills",
		},
		{
			name:    "missing voice tone",
			mutate:  func(in *CharacterInput) { in.VoiceTone = " " },
			wantErr: "communication style",
		},
		{
			name:    "empty description",
			mutate:  func(in *CharacterInput) { in.Description = "" },
			wantErr: "Character description is required",
		},
		{
			name:    "description too short",
			mutate:  func(in *CharacterInput) { in.Description = "too short" },
			wantErr: "at least 10 characters",
		},
		{
			name:    "description too long",
			mutate:  func(in *CharacterInput) { in.Description = strings.Repeat("d", 201) },
			wantErr: "less than 200 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCharacterInput()
			tt.mutate(in)
			err := in.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestInstructionDefaultOverride(t *testing.T) {
	svc := &CharacterService{}

	def := model.DefaultCharacter()
	if got := svc.Instruction(def, "Act as a pirate."); got != "Act as a pirate." {
		t.Errorf("default character override ignored: %q", got)
	}
	if got := svc.Instruction(def, "  "); !strings.Contains(got, "You are AI Assistant") {
		t.Errorf("blank override must fall back to compiled instruction: %q", got)
	}

	// 自建角色不受默认指令覆盖影响
	custom := &model.Character{
		Name:      "Sage",
		Mood:      "calm",
		VoiceTone: "analytical",
		Skills:    model.SkillList{"philosophy"},
	}
	custom.ID = "some-uuid"
	if got := svc.Instruction(custom, "Act as a pirate."); !strings.Contains(got, "You are Sage") {
		t.Errorf("custom character wrongly overridden: %q", got)
	}
}
