package schema

// Question is the body of a new chat question.
type Question struct {
	QuestionText string `json:"questionText"`
}

// QuestionSchema describes Question; the text must contain a non-blank
// character and stay within maxLength characters.
func QuestionSchema(maxLength int) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"questionText": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
				"maxLength": maxLength,
				"pattern":   `\S`,
			},
		},
		"required": []string{"questionText"},
	}
}

func NewQuestionValidator(maxLength int) (*Validator, error) {
	return Compile("askadam-question", QuestionSchema(maxLength))
}
