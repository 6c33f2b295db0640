package ai

import "context"

// Intent is the coarse classification of one user turn.
type Intent string

const (
	IntentInformational Intent = "informational_question"
	IntentJobSearch     Intent = "job_search"
	IntentLeaveInfo     Intent = "leave_info"
	IntentOffTopic      Intent = "off_topic"
)

// Slots carries the values the classifier extracted from the utterance.
// Empty strings mean the user did not provide the value.
type Slots struct {
	Position    string
	Skills      string
	Name        string
	Email       string
	Phone       string
	ProfileLink string
	// JobReference is free text naming the position the candidate is
	// talking about, used to attach a job id to a submission.
	JobReference string
}

// Turn is the classifier's verdict for one utterance.
type Turn struct {
	Intent Intent
	Slots  Slots
}

// Classifier decides which capability a user turn needs. History carries the
// most recent prior exchanges for context.
type Classifier interface {
	Classify(ctx context.Context, message string, history []string) (*Turn, error)
}

// Responder phrases a grounded reply from the supplied material. It must not
// introduce facts that are not in the material.
type Responder interface {
	Respond(ctx context.Context, question, material string) (string, error)
}
