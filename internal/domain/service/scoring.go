package service

import "snaplearn/internal/domain/entity"

// ScoreQuiz evaluates submitted answers against a quiz's answer key.
//
// Each answer is matched to a question by prompt text, so clients may present
// questions in any order. The selection is an option letter ("A", "B", ...)
// mapped to a zero-based index into the question's option list. An answer is
// correct only when the resolved option text equals the recorded correct
// answer. Unknown prompts and out-of-range letters count as incorrect rather
// than failing the whole submission. total is the number of submitted answers.
func ScoreQuiz(questions []entity.QuizQuestion, answers []entity.SubmittedAnswer) (correct, total int) {
	byPrompt := make(map[string]*entity.QuizQuestion, len(questions))
	for i := range questions {
		byPrompt[questions[i].Question] = &questions[i]
	}

	for _, answer := range answers {
		question, ok := byPrompt[answer.Question]
		if !ok {
			continue
		}

		idx := selectedOptionIndex(answer.Selected)
		if idx < 0 || idx >= len(question.Options) {
			continue
		}

		if question.Options[idx] == question.CorrectAnswer {
			correct++
		}
	}

	return correct, len(answers)
}

// selectedOptionIndex maps a single option letter to its zero-based index:
// 'A' -> 0, 'B' -> 1, ... Anything else yields -1.
func selectedOptionIndex(selected string) int {
	if len(selected) != 1 {
		return -1
	}

	return int(selected[0]) - 'A'
}
