package helper

// QuestionOption - вариант ответа в том виде, в каком его видит клиент
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// OptionObjects нумерует варианты с нуля: ID совпадает с индексом, который
// клиент отправляет в selected_option и который хранится в correct_option.
func OptionObjects(options []string) []QuestionOption {
	out := make([]QuestionOption, 0, len(options))
	for i := range options {
		out = append(out, QuestionOption{ID: i, Text: options[i]})
	}
	return out
}
