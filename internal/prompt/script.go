package prompt

import "fmt"

// Script is a Prompter that replays queued answers in order. Strategy and
// collector tests drive interactive flows with it. An exhausted script
// returns an error, matching a closed stdin.
type Script struct {
	Answers []any
	pos     int
}

func (s *Script) next(title string) (any, error) {
	if s.pos >= len(s.Answers) {
		return nil, fmt.Errorf("prompt %q: no scripted answer left", title)
	}
	a := s.Answers[s.pos]
	s.pos++
	return a, nil
}

func (s *Script) Input(title, _, _, defaultValue string) (string, error) {
	a, err := s.next(title)
	if err != nil {
		return "", err
	}
	if v, ok := a.(string); ok {
		if v == "" {
			return defaultValue, nil
		}
		return v, nil
	}
	return "", fmt.Errorf("prompt %q: scripted answer is not a string", title)
}

func (s *Script) Password(title, _ string) (string, error) {
	a, err := s.next(title)
	if err != nil {
		return "", err
	}
	v, ok := a.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q: scripted answer is not a string", title)
	}
	return v, nil
}

func (s *Script) Confirm(title, _ string, _ bool) (bool, error) {
	a, err := s.next(title)
	if err != nil {
		return false, err
	}
	v, ok := a.(bool)
	if !ok {
		return false, fmt.Errorf("prompt %q: scripted answer is not a bool", title)
	}
	return v, nil
}

func (s *Script) Select(title, _ string, _ []Option, _ string) (string, error) {
	a, err := s.next(title)
	if err != nil {
		return "", err
	}
	v, ok := a.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q: scripted answer is not a string", title)
	}
	return v, nil
}
