package model

// QuizQuestion is one generated multiple-choice question. CorrectAnswer is
// an index into Options.
type QuizQuestion struct {
	ID            int64    `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizRequest is the body of a generate-quiz relay call.
type QuizRequest struct {
	Text  string `json:"text"`
	Count int    `json:"count,omitempty"`
}

// TTSRequest is the body of a generate-audio relay call.
type TTSRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}
