package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vti-labs/recruit-assistant/internal/ai"
	"github.com/vti-labs/recruit-assistant/internal/applicant"
	"github.com/vti-labs/recruit-assistant/internal/jobs"
	"github.com/vti-labs/recruit-assistant/internal/knowledge"
	"github.com/vti-labs/recruit-assistant/internal/logger"
	"github.com/vti-labs/recruit-assistant/internal/session"
	"github.com/vti-labs/recruit-assistant/internal/websearch"
)

const (
	defaultMinConfidence = 0.6
	defaultHistoryRuns   = 5
	defaultSearchResults = 5
)

// JobSource provides the job postings snapshot.
type JobSource interface {
	Load(ctx context.Context) (*jobs.Postings, error)
	Reload(ctx context.Context) error
}

// Recorder persists applicant submissions.
type Recorder interface {
	Record(ctx context.Context, sub applicant.Submission) (string, error)
}

// Reloader is implemented by components whose backing data can be refreshed
// without a restart.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Deps carries the components one orchestrator coordinates. Classifier is
// required; every other component may be nil and its capability degrades to
// the matching canned reply.
type Deps struct {
	Classifier ai.Classifier
	Responder  ai.Responder
	Knowledge  knowledge.Store
	Jobs       JobSource
	Recorder   Recorder
	Searcher   websearch.Searcher
	Sessions   session.Store
	Logger     *zap.Logger

	// MinConfidence gates knowledge hits; lower-scored hits fall through
	// to web search.
	MinConfidence float64
	// HistoryRuns is how many prior exchanges the classifier sees.
	HistoryRuns int
	// SearchResults is the requested web result count.
	SearchResults int
}

// Orchestrator routes each user turn to exactly one capability and shapes
// its output into the reply. Tool failures never reach the candidate as
// errors; they are logged and replaced with an apology.
type Orchestrator struct {
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps) (*Orchestrator, error) {
	if deps.Classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MinConfidence <= 0 {
		deps.MinConfidence = defaultMinConfidence
	}
	if deps.HistoryRuns <= 0 {
		deps.HistoryRuns = defaultHistoryRuns
	}
	if deps.SearchResults <= 0 {
		deps.SearchResults = defaultSearchResults
	}

	return &Orchestrator{
		deps:   deps,
		logger: deps.Logger,
	}, nil
}

// Turn handles one user message and returns the reply. The exchange is
// appended to the session history; a history failure is logged and the reply
// still returned.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, userID, message string) string {
	log := o.logger.With(zap.String(logger.FieldSession, sessionID))

	turn, err := o.deps.Classifier.Classify(ctx, message, o.history(ctx, sessionID, userID))
	if err != nil {
		log.Error("classifying turn failed", zap.Error(err))
		return o.finish(ctx, log, sessionID, userID, message, MessageApology)
	}

	log.Debug("classified turn", zap.String(logger.FieldIntent, string(turn.Intent)))

	var reply string
	switch turn.Intent {
	case ai.IntentInformational:
		reply = o.answerQuestion(ctx, log, message)
	case ai.IntentJobSearch:
		reply = o.listJobs(ctx, log, turn.Slots)
	case ai.IntentLeaveInfo:
		reply = o.recordApplicant(ctx, log, turn.Slots)
	default:
		reply = MessageOffTopic
	}

	return o.finish(ctx, log, sessionID, userID, message, reply)
}

// Reload refreshes every reloadable component.
func (o *Orchestrator) Reload(ctx context.Context) error {
	if o.deps.Jobs != nil {
		if err := o.deps.Jobs.Reload(ctx); err != nil {
			return fmt.Errorf("reload jobs: %w", err)
		}
	}
	if reloader, ok := o.deps.Knowledge.(Reloader); ok {
		if err := reloader.Reload(ctx); err != nil {
			return fmt.Errorf("reload knowledge: %w", err)
		}
	}
	return nil
}

// answerQuestion serves informational questions: curated knowledge first,
// scoped web search when the knowledge store has no confident answer. The
// reply never contains facts from outside those two sources.
func (o *Orchestrator) answerQuestion(ctx context.Context, log *zap.Logger, question string) string {
	if o.deps.Knowledge != nil {
		hit, err := o.deps.Knowledge.Retrieve(ctx, question)
		if err != nil {
			log.Warn("knowledge retrieval failed, falling back to web search", zap.Error(err))
		} else if hit != nil && hit.Confidence >= o.deps.MinConfidence {
			return o.phrase(ctx, log, question, hit.Answer)
		} else if hit != nil {
			log.Debug("knowledge hit below confidence threshold",
				zap.Float64("confidence", hit.Confidence),
				zap.Float64("threshold", o.deps.MinConfidence),
			)
		}
	}

	if o.deps.Searcher == nil {
		return MessageSearchFailed
	}

	results, err := o.deps.Searcher.Search(ctx, question, o.deps.SearchResults)
	if err != nil {
		log.Warn("web search failed", zap.Error(err))
		return MessageSearchFailed
	}

	return results.Format()
}

// phrase asks the responder to word the answer conversationally, keeping the
// raw knowledge answer as the fallback.
func (o *Orchestrator) phrase(ctx context.Context, log *zap.Logger, question, answer string) string {
	if o.deps.Responder == nil {
		return answer
	}

	phrased, err := o.deps.Responder.Respond(ctx, question, answer)
	if err != nil {
		log.Warn("phrasing answer failed, returning raw answer", zap.Error(err))
		return answer
	}
	return phrased
}

func (o *Orchestrator) listJobs(ctx context.Context, log *zap.Logger, slots ai.Slots) string {
	if o.deps.Jobs == nil {
		return MessageApology
	}

	postings, err := o.deps.Jobs.Load(ctx)
	if err != nil {
		log.Error("loading job postings failed", zap.Error(err))
		return MessageApology
	}

	return jobs.FormatList(postings.Match(slots.Position, slots.Skills))
}

func (o *Orchestrator) recordApplicant(ctx context.Context, log *zap.Logger, slots ai.Slots) string {
	var missing []string
	if slots.Name == "" {
		missing = append(missing, "tên của bạn")
	}
	if slots.Email == "" {
		missing = append(missing, "địa chỉ email")
	}
	if len(missing) > 0 {
		return missingContactMessage(missing)
	}

	jobID, clarify := o.resolveJobReference(ctx, log, slots.JobReference)
	if clarify != "" {
		return clarify
	}

	if o.deps.Recorder == nil {
		return MessageRecordFailed
	}

	message, err := o.deps.Recorder.Record(ctx, applicant.Submission{
		Name:        slots.Name,
		Email:       slots.Email,
		Phone:       slots.Phone,
		ProfileLink: slots.ProfileLink,
		JobID:       jobID,
	})
	if err != nil {
		var validation *applicant.ValidationError
		if errors.As(err, &validation) {
			return missingContactMessage([]string{"tên của bạn", "địa chỉ email"})
		}
		log.Error("recording applicant failed", zap.Error(err))
		return MessageRecordFailed
	}

	return message
}

// resolveJobReference maps the free-text position reference to a posting id.
// A single match attaches its id; several matches ask the candidate to pick
// one instead of guessing; no match or an unavailable directory records the
// submission without an id.
func (o *Orchestrator) resolveJobReference(ctx context.Context, log *zap.Logger, reference string) (jobID, clarify string) {
	if reference == "" || o.deps.Jobs == nil {
		return "", ""
	}

	postings, err := o.deps.Jobs.Load(ctx)
	if err != nil {
		log.Warn("loading postings to resolve job reference failed", zap.Error(err))
		return "", ""
	}

	matches := postings.Match(reference, "")
	switch matches.Len() {
	case 0:
		return "", ""
	case 1:
		return matches.Items[0].ID, ""
	default:
		return "", clarifyJobMessage(matches.Titles())
	}
}

// history renders the most recent exchanges for the classifier.
func (o *Orchestrator) history(ctx context.Context, sessionID, userID string) []string {
	if o.deps.Sessions == nil {
		return nil
	}

	runs, err := o.deps.Sessions.GetRuns(ctx, sessionID, userID, o.deps.HistoryRuns)
	if err != nil {
		o.logger.Warn("loading session history failed", zap.Error(err))
		return nil
	}

	lines := make([]string, 0, len(runs)*2)
	for _, run := range runs {
		lines = append(lines, "user: "+run.Input, "assistant: "+run.Response)
	}
	return lines
}

// finish appends the exchange to the session store and returns the reply.
func (o *Orchestrator) finish(ctx context.Context, log *zap.Logger, sessionID, userID, input, reply string) string {
	if o.deps.Sessions != nil {
		err := o.deps.Sessions.AppendRun(ctx, &session.Run{
			SessionID: sessionID,
			UserID:    userID,
			Input:     input,
			Response:  reply,
		})
		if err != nil {
			log.Warn("appending run to session history failed", zap.Error(err))
		}
	}
	return reply
}
