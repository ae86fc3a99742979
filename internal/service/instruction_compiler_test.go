package service

import (
	"strings"
	"testing"

	"chatgenius_backend/internal/model"
)

func TestCompileInstruction(t *testing.T) {
	tests := []struct {
		name        string
		character   *model.Character
		contains    []string
		notContains []string
	}{
		{
			name: "known mood and tone expand to descriptions",
			character: &model.Character{
				Name:        "Sage",
				Description: "A thoughtful guide for deep questions",
				Mood:        "calm",
				VoiceTone:   "analytical",
				Skills:      model.SkillList{"philosophy", "science"},
			},
			contains: []string{
				"You are Sage, an AI assistant",
				"MOOD: calm - Peaceful and zen",
				"VOICE TONE: analytical - Logical and detailed",
				"Philosophy, Science",
				"Respond to all messages as Sage would",
			},
			notContains: []string{"LANGUAGE STYLE"},
		},
		{
			name: "unknown mood passes through without suffix",
			character: &model.Character{
				Name:      "Echo",
				Mood:      "melancholic",
				VoiceTone: "casual",
				Skills:    model.SkillList{"music"},
			},
			contains:    []string{"MOOD: melancholic\n"},
			notContains: []string{"melancholic -"},
		},
		{
			name: "custom skill passes through verbatim",
			character: &model.Character{
				Name:      "Chef",
				Mood:      "friendly",
				VoiceTone: "casual",
				Skills:    model.SkillList{"cooking", "molecular gastronomy"},
			},
			contains: []string{"Cooking, molecular gastronomy"},
		},
		{
			name: "playful mood adds style block and guideline",
			character: &model.Character{
				Name:      "Trickster",
				Mood:      "playful",
				VoiceTone: "humorous",
				Skills:    model.SkillList{"gaming"},
			},
			contains: []string{
				"LANGUAGE STYLE: Use playful, flirty",
				"- Use playful, suggestive language and be flirtatious in your responses",
			},
			notContains: []string{"unfiltered language"},
		},
		{
			name: "unhinged mood adds unfiltered block and guideline",
			character: &model.Character{
				Name:      "Rogue",
				Mood:      "unhinged",
				VoiceTone: "casual",
				Skills:    model.SkillList{"coding"},
			},
			contains: []string{
				"LANGUAGE STYLE: Use strong, unfiltered language",
				"- Feel free to use strong language, profanity, and be brutally honest without filters",
			},
			notContains: []string{"flirty"},
		},
		{
			name: "empty description falls back",
			character: &model.Character{
				Name:      "Blank",
				Mood:      "friendly",
				VoiceTone: "casual",
			},
			contains: []string{
				"DESCRIPTION: A helpful AI assistant",
				"skilled in: general knowledge",
				"expertise in various topics",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileInstruction(tt.character)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("instruction missing %q\n---\n%s", want, got)
				}
			}
			for _, bad := range tt.notContains {
				if strings.Contains(got, bad) {
					t.Errorf("instruction unexpectedly contains %q", bad)
				}
			}
		})
	}
}

func TestCompileInstructionDeterministic(t *testing.T) {
	ch := &model.Character{
		Name:        "Nova",
		Description: "Space enthusiast who loves explaining the cosmos",
		Mood:        "enthusiastic",
		VoiceTone:   "storyteller",
		Skills:      model.SkillList{"science", "writing"},
	}
	first := CompileInstruction(ch)
	second := CompileInstruction(ch)
	if first != second {
		t.Error("compiling the same character twice produced different instructions")
	}
}

func TestResolveRegister(t *testing.T) {
	cases := map[string]MoodRegister{
		"playful":    RegisterPlayful,
		"unhinged":   RegisterUnfiltered,
		"friendly":   RegisterStandard,
		"sarcastic":  RegisterStandard,
		"customized": RegisterStandard,
		"":           RegisterStandard,
	}
	for mood, want := range cases {
		if got := resolveRegister(mood); got != want {
			t.Errorf("resolveRegister(%q) = %v, want %v", mood, got, want)
		}
	}
}
