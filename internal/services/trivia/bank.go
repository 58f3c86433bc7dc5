package trivia

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/splitbot-dev/splitbot/internal/dependencies/random"
	"github.com/splitbot-dev/splitbot/internal/model"
)

// Question is one trivia entry: the prompt, the enumerated options, and
// which option is correct
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Bank holds the loaded trivia questions
type Bank struct {
	questions []Question
	random    random.Random
}

// NewBank creates a Bank over an in-memory question list
func NewBank(questions []Question, rnd random.Random) *Bank {
	return &Bank{questions: questions, random: rnd}
}

// questionFile is the on-disk shape of the trivia bank
type questionFile struct {
	Questions []Question `json:"questions"`
}

// ReadQuestions reads the question list from a JSON bank file
func ReadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trivia bank: %w", err)
	}

	var file questionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse trivia bank: %w", err)
	}
	return file.Questions, nil
}

// LoadBank reads a question bank from a JSON file
func LoadBank(path string, rnd random.Random) (*Bank, error) {
	questions, err := ReadQuestions(path)
	if err != nil {
		return nil, err
	}
	return &Bank{questions: questions, random: rnd}, nil
}

// Random returns a random question, or ErrNoQuestions when the bank is
// empty
func (b *Bank) Random() (Question, error) {
	if len(b.questions) == 0 {
		return Question{}, model.ErrNoQuestions
	}
	return b.questions[b.random.Intn(len(b.questions))], nil
}

// Len reports how many questions are loaded
func (b *Bank) Len() int {
	return len(b.questions)
}
