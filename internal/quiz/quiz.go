// Package quiz runs a multiple-choice quiz one question at a time.
package quiz

import (
	"slices"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Question is one multiple-choice question. Answer must be one of Options.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Bank returns the built-in question set.
func Bank() []Question {
	return []Question{
		{
			Text:    "Which planet is known as the Blue Planet?",
			Options: []string{"Mars", "Venus", "Earth", "Neptune"},
			Answer:  "Earth",
		},
		{
			Text:    "How much of the Earth's surface is covered by water?",
			Options: []string{"30%", "50%", "70%", "90%"},
			Answer:  "70%",
		},
		{
			Text:    "What is the only planet known to support life?",
			Options: []string{"Earth", "Mars", "Jupiter", "Saturn"},
			Answer:  "Earth",
		},
		{
			Text:    "What layer protects Earth from the Sun's radiation?",
			Options: []string{"Troposphere", "Stratosphere", "Ozone Layer", "Exosphere"},
			Answer:  "Ozone Layer",
		},
	}
}

// Session tracks progress through a question list. A question accepts one
// answer; Next is only allowed once it has been answered.
type Session struct {
	questions []Question
	current   int
	answered  bool
	score     int
}

// NewSession starts a session over questions.
func NewSession(questions []Question) *Session {
	return &Session{questions: questions}
}

// Current returns the question being asked. ok is false once the quiz is done.
func (s *Session) Current() (q Question, ok bool) {
	if s.Done() {
		return Question{}, false
	}
	return s.questions[s.current], true
}

// Index returns the zero-based position of the current question.
func (s *Session) Index() int { return s.current }

// Len returns the number of questions.
func (s *Session) Len() int { return len(s.questions) }

// Answer locks in option for the current question and reports whether it
// was correct, along with the correct answer.
func (s *Session) Answer(option string) (correct bool, answer string, err error) {
	q, ok := s.Current()
	if !ok {
		return false, "", types.ErrQuizFinished
	}
	if s.answered {
		return false, q.Answer, types.ErrAlreadyAnswered
	}
	if !slices.Contains(q.Options, option) {
		return false, "", types.ErrUnknownOption
	}

	s.answered = true
	if option == q.Answer {
		s.score++
		return true, q.Answer, nil
	}
	return false, q.Answer, nil
}

// Answered reports whether the current question has been answered.
func (s *Session) Answered() bool { return s.answered }

// Next moves to the following question. It returns types.ErrNotAnswered if
// the current question is still open.
func (s *Session) Next() error {
	if s.Done() {
		return types.ErrQuizFinished
	}
	if !s.answered {
		return types.ErrNotAnswered
	}
	s.current++
	s.answered = false
	return nil
}

// Done reports whether every question has been passed.
func (s *Session) Done() bool { return s.current >= len(s.questions) }

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }
