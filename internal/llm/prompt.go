package llm

import (
	"fmt"
	"strings"
)

// buildPrompt renders a batch into the model prompt. The draws say what
// to produce; concepts and reference questions anchor the content to
// the syllabus.
func buildPrompt(req BatchRequest) string {
	var b strings.Builder

	b.WriteString("Generate exam questions for a school question paper.\n\n")

	b.WriteString("Produce exactly the following questions, in this order:\n")
	for i, draw := range req.Draws {
		fmt.Fprintf(&b, "%d. question_type=%s, hardness_level=%s\n", i+1, draw.Type, draw.Hardness)
	}

	if len(req.Concepts) > 0 {
		b.WriteString("\nBase every question on these syllabus concepts:\n")
		for _, concept := range req.Concepts {
			fmt.Fprintf(&b, "- %s", concept.Name)
			if concept.Description != "" {
				fmt.Fprintf(&b, ": %s", concept.Description)
			}
			b.WriteString("\n")
		}
	}

	if len(req.ReferenceQuestions) > 0 {
		b.WriteString("\nMatch the style and difficulty register of these reference questions from the textbook:\n")
		for _, ref := range req.ReferenceQuestions {
			fmt.Fprintf(&b, "- [%s] %s\n", ref.Type, ref.QuestionText)
		}
	}

	if req.Marks != nil {
		fmt.Fprintf(&b, "\nEach question carries %d marks.\n", *req.Marks)
	}

	b.WriteString(`
Field rules per question_type:
- mcq4: fill option1..option4 (all non-empty) and correct_mcq_option (1-4). Leave answer_text empty.
- msq4: fill option1..option4 and msq_option1_answer..msq_option4_answer booleans with at least one true. Leave answer_text empty.
- true_or_false: answer_text must be exactly "True" or "False". No options.
- fill_in_the_blanks: question_text contains the blank as "______"; answer_text is the missing text. No options.
- short_answer, long_answer: answer_text holds the model answer. No options.
Always fill question_text, question_type, hardness_level, and a brief explanation.
Return a JSON array with one object per requested question, in the requested order.`)

	return b.String()
}
