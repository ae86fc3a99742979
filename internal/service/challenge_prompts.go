package service

import (
	"fmt"

	"chatgenius_backend/internal/model"
)

// 出题提示词。三种来源（纯文本、图片、PDF）共用同一套题目结构约束，
// 只有开头的分析要求不同，和上游模型约定的 JSON 契约保持一字不差。

const objectivePerQuestion = `- Write a clear question
   - Provide exactly 4 options labeled a, b, c, d
   - Include the correct answer and explanation`

const subjectivePerQuestion = `- Write a clear question
   - Include a detailed marking scheme with points and marks per point`

const objectiveSchemaFields = `"options": [
          {"id": "a", "text": "First option"},
          {"id": "b", "text": "Second option"},
          {"id": "c", "text": "Third option"},
          {"id": "d", "text": "Fourth option"}
        ],
        "correctAnswer": "a",
        "explanation": "Explain why this is the correct answer"`

const subjectiveSchemaFields = `"markingScheme": {
          "points": ["First point to check", "Second point to check"],
          "marksPerPoint": [3, 2]
        }`

// 主题出题前置的教学质量要求，与用户自定义指令合并
const topicGuidelines = `Additional Guidelines:
1. Use the topic analysis to ensure comprehensive coverage
2. Include questions that test both theoretical understanding and practical applications
3. For technical topics, provide detailed explanations or step-by-step solutions
4. Include at least one question that addresses common misconceptions
5. Ensure questions progress from basic concepts to advanced applications`

func questionTypeLabel(t model.QuestionType) string {
	if t == model.QuestionObjective {
		return "multiple-choice"
	}
	return "open-ended"
}

func perQuestionRules(t model.QuestionType) string {
	if t == model.QuestionObjective {
		return objectivePerQuestion
	}
	return subjectivePerQuestion
}

func schemaFields(t model.QuestionType) string {
	if t == model.QuestionObjective {
		return objectiveSchemaFields
	}
	return subjectiveSchemaFields
}

func jsonContract(t model.QuestionType) string {
	return fmt.Sprintf(`You MUST return ONLY the following JSON structure with no additional text, markdown formatting, or code blocks:

{
  "questions": [
    {
      "id": 1,
      "text": "Write the question text here",
      "type": "%s",
      "marks": 5,
      %s
    }
  ]
}

CRITICAL RULES:
1. Return ONLY the JSON object - no additional text, no markdown formatting, no code blocks
2. Use double quotes for all strings in JSON
3. Do not use backticks, markdown, or code block formatting
4. For objective questions:
   - Use only "a", "b", "c", "d" for option IDs
   - Include exactly 4 options for each question
5. For subjective questions:
   - Ensure marksPerPoint array length matches points array length
   - Total marks per question should be the sum of marksPerPoint`, t, schemaFields(t))
}

func customInstructionSuffix(custom string) string {
	if custom == "" {
		return ""
	}
	return "\n\nAdditional Instructions:\n" + custom
}

// topicAnalysisPrompt 主题路径第一步：先让模型拆解主题
func topicAnalysisPrompt(topic string) string {
	return fmt.Sprintf(`Analyze the following topic and identify key areas to test:
Topic: %s

Please provide:
1. Main concepts and principles
2. Key theories, formulas, or frameworks relevant to the topic
3. Important applications and real-world examples
4. Common misconceptions or challenging aspects
5. Prerequisites and related topics

This analysis will be used to generate exam questions.`, topic)
}

// contentChallengePrompt 基于文本内容出题（主题分析结果或纯文本文档）
func contentChallengePrompt(content string, req *ChallengeRequest) string {
	return fmt.Sprintf(`You are an expert educator. Generate %d %s questions based on the following content. You MUST return ONLY a valid JSON object with no additional text or formatting.

Content:
%s

Requirements:
1. Generate exactly %d questions
2. For each question:
   %s
3. Ensure questions:
   - Are clearly worded
   - Progress from easier to harder
   - Cover different aspects of the topic
   - Include calculations where appropriate for mathematical/scientific topics

%s%s`,
		req.NumberOfQuestions, questionTypeLabel(req.QuestionType), content,
		req.NumberOfQuestions, perQuestionRules(req.QuestionType),
		jsonContract(req.QuestionType), customInstructionSuffix(req.CustomInstruction))
}

// imageChallengePrompt 图片附件出题
func imageChallengePrompt(req *ChallengeRequest) string {
	return fmt.Sprintf(`You are an expert educator. Analyze the image provided and generate %d %s questions based on its content. You MUST return ONLY a valid JSON object with no additional text or formatting.

Requirements:
1. First, carefully analyze the image content, including:
   - Text, diagrams, charts, or mathematical expressions
   - Visual elements, symbols, and their relationships
   - Any educational content or concepts shown
2. Generate exactly %d questions based on the image content
3. For each question:
   %s
4. Ensure questions:
   - Are clearly worded and directly related to the image content
   - Progress from easier to harder
   - Cover different aspects shown in the image
   - Include calculations where appropriate if mathematical content is present

%s%s`,
		req.NumberOfQuestions, questionTypeLabel(req.QuestionType),
		req.NumberOfQuestions, perQuestionRules(req.QuestionType),
		jsonContract(req.QuestionType), customInstructionSuffix(req.CustomInstruction))
}

// documentChallengePrompt PDF 附件出题
func documentChallengePrompt(req *ChallengeRequest) string {
	return fmt.Sprintf(`You are an expert educator. Analyze the PDF document provided and generate %d %s questions based on its content. You MUST return ONLY a valid JSON object with no additional text or formatting.

Requirements:
1. First, carefully analyze the document content, including:
   - Text content, headings, and structure
   - Tables, charts, diagrams, or mathematical expressions
   - Key concepts, theories, and important information
   - Any educational content or learning objectives
2. Generate exactly %d questions based on the document content
3. For each question:
   %s
4. Ensure questions:
   - Are clearly worded and directly related to the document content
   - Progress from easier to harder
   - Cover different sections or concepts from the document
   - Include calculations where appropriate if mathematical content is present
   - Test comprehension, analysis, and application of the material

%s%s`,
		req.NumberOfQuestions, questionTypeLabel(req.QuestionType),
		req.NumberOfQuestions, perQuestionRules(req.QuestionType),
		jsonContract(req.QuestionType), customInstructionSuffix(req.CustomInstruction))
}

// mergeTopicInstruction 用户自定义指令与教学要求合并，自定义指令在前
func mergeTopicInstruction(custom string) string {
	return custom + "\n\n" + topicGuidelines
}
