package review

import "fmt"

// Script is an Operator answering from a fixed queue of lines. Decide and
// Override draw from the same queue, like successive reads of one input
// stream. When the queue is empty every read returns ErrInputClosed.
type Script struct {
	answers []string

	// Presented holds every text passed to Present, in order.
	Presented []string
	// Failures holds every error passed to Failed, in order.
	Failures []error
	// Rejected holds every token passed to Invalid, in order.
	Rejected []string
	// Events is the full call log, e.g. "present:T", "decide:r".
	Events []string
}

// NewScript creates a scripted operator.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

// Remaining returns the number of unread answers.
func (s *Script) Remaining() int {
	return len(s.answers)
}

func (s *Script) next() (string, error) {
	if len(s.answers) == 0 {
		return "", ErrInputClosed
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Present records text.
func (s *Script) Present(stage Stage, text string) {
	s.Presented = append(s.Presented, text)
	s.Events = append(s.Events, "present:"+text)
}

// Failed records err.
func (s *Script) Failed(stage Stage, err error) {
	s.Failures = append(s.Failures, err)
	s.Events = append(s.Events, fmt.Sprintf("failed:%v", err))
}

// Decide returns the next queued line.
func (s *Script) Decide(stage Stage) (string, error) {
	answer, err := s.next()
	if err != nil {
		s.Events = append(s.Events, "decide:<eof>")
		return "", err
	}
	s.Events = append(s.Events, "decide:"+answer)
	return answer, nil
}

// Override returns the next queued line.
func (s *Script) Override(stage Stage) (string, error) {
	answer, err := s.next()
	if err != nil {
		s.Events = append(s.Events, "override:<eof>")
		return "", err
	}
	s.Events = append(s.Events, "override:"+answer)
	return answer, nil
}

// Invalid records token.
func (s *Script) Invalid(stage Stage, token string) {
	s.Rejected = append(s.Rejected, token)
	s.Events = append(s.Events, "invalid:"+token)
}
