package service

import (
	"chatgenius_backend/internal/model"
	"fmt"
	"strings"
)

// MoodRegister 语言风格档位，由 mood 值解析得到。
// 新增档位时在 resolveRegister 和 registerBlock 两处同时扩展。
type MoodRegister int

const (
	RegisterStandard MoodRegister = iota
	RegisterPlayful
	RegisterUnfiltered
)

// 预置 mood 的人类可读描述；未命中的 mood 原样使用，不加后缀
var moodDescriptions = map[string]string{
	"friendly":     "Warm and welcoming",
	"professional": "Business-like and formal",
	"sarcastic":    "Witty with a bite",
	"enthusiastic": "Energetic and excited",
	"calm":         "Peaceful and zen",
	"quirky":       "Unique and eccentric",
	"playful":      "Mischievous and naughty",
	"unhinged":     "Wild and unfiltered",
}

var voiceToneDescriptions = map[string]string{
	"casual":      "Relaxed and informal",
	"formal":      "Proper and structured",
	"humorous":    "Funny and entertaining",
	"inspiring":   "Motivational and uplifting",
	"analytical":  "Logical and detailed",
	"storyteller": "Narrative and engaging",
}

// 预置技能标签；自定义技能原样透传
var skillLabels = map[string]string{
	"coding":     "Coding",
	"writing":    "Creative Writing",
	"math":       "Mathematics",
	"science":    "Science",
	"cooking":    "Cooking",
	"music":      "Music",
	"art":        "Art & Design",
	"business":   "Business",
	"fitness":    "Fitness",
	"travel":     "Travel",
	"gaming":     "Gaming",
	"philosophy": "Philosophy",
}

const playfulLanguageBlock = `
LANGUAGE STYLE: Use playful, flirty, and slightly naughty language. Include suggestive humor, double entendres, and cheeky remarks. Be mischievous and tease the user in a fun way. Use words like "naughty", "dirty", "spicy", and other playfully suggestive terms when appropriate.`

const unfilteredLanguageBlock = `
LANGUAGE STYLE: Use strong, unfiltered language including profanity and abusive words when expressing frustration or emphasis. Don't hold back - use words like "damn", "shit", "fuck", "asshole", "bastard", etc. when it fits the conversation. Be raw, unfiltered, and brutally honest. Show no restraint in your language choices.`

func resolveRegister(mood string) MoodRegister {
	switch mood {
	case "playful":
		return RegisterPlayful
	case "unhinged":
		return RegisterUnfiltered
	default:
		return RegisterStandard
	}
}

func registerBlock(r MoodRegister) string {
	switch r {
	case RegisterPlayful:
		return playfulLanguageBlock
	case RegisterUnfiltered:
		return unfilteredLanguageBlock
	default:
		return ""
	}
}

// CompileInstruction 将角色属性编译为系统指令。
// 纯函数：相同输入必然产生相同输出；不缓存，角色变更后由调用方重新编译。
func CompileInstruction(ch *model.Character) string {
	moodDesc := moodDescriptions[ch.Mood]
	toneDesc := voiceToneDescriptions[ch.VoiceTone]

	labels := make([]string, 0, len(ch.Skills))
	for _, skill := range ch.Skills {
		if label, ok := skillLabels[skill]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, skill)
		}
	}
	skillsList := strings.Join(labels, ", ")

	register := resolveRegister(ch.Mood)
	languageInstructions := registerBlock(register)

	description := ch.Description
	if description == "" {
		description = "A helpful AI assistant"
	}

	moodLine := ch.Mood
	if moodDesc != "" {
		moodLine += " - " + moodDesc
	}
	toneLine := ch.VoiceTone
	if toneDesc != "" {
		toneLine += " - " + toneDesc
	}

	expertise := skillsList
	if expertise == "" {
		expertise = "general knowledge"
	}
	expertiseRef := skillsList
	if expertiseRef == "" {
		expertiseRef = "various topics"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an AI assistant with the following characteristics:\n\n", ch.Name)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n\n", description)
	fmt.Fprintf(&b, "MOOD: %s\n\n", moodLine)
	fmt.Fprintf(&b, "VOICE TONE: %s\n\n", toneLine)
	fmt.Fprintf(&b, "EXPERTISE: You are particularly skilled in: %s%s\n\n", expertise, languageInstructions)

	b.WriteString("BEHAVIOR GUIDELINES:\n")
	fmt.Fprintf(&b, "- Always respond in character as %s\n", ch.Name)
	fmt.Fprintf(&b, "- Maintain your %s mood throughout conversations\n", ch.Mood)
	fmt.Fprintf(&b, "- Use a %s tone in your responses\n", ch.VoiceTone)
	fmt.Fprintf(&b, "- Draw upon your expertise in %s when relevant\n", expertiseRef)
	b.WriteString("- Be helpful while staying true to your character description\n")
	if register == RegisterPlayful {
		b.WriteString("- Use playful, suggestive language and be flirtatious in your responses\n")
	}
	if register == RegisterUnfiltered {
		b.WriteString("- Feel free to use strong language, profanity, and be brutally honest without filters\n")
	}

	fmt.Fprintf(&b, "\nRespond to all messages as %s would, keeping these characteristics consistent.", ch.Name)

	return b.String()
}
