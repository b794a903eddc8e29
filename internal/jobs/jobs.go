package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/teamtools/boardnotify/internal/config"
	"github.com/teamtools/boardnotify/internal/digest"
	"github.com/teamtools/boardnotify/internal/github"
	"github.com/teamtools/boardnotify/internal/notify"
	"github.com/teamtools/boardnotify/internal/tracker"
)

// Job names, used for scheduling, metrics, and log attribution.
const (
	JobToDo    = "todo-digest"
	JobPR      = "pr-digest"
	JobMeeting = "meeting-reminder"
)

const (
	todoTitle = "📌 Sprint's backlog"
	prTitle   = "👀 Pull requests for review"
)

// Runner owns one firing of each notification job. It holds no state between
// firings: every run resolves the roster and recomputes the digest from
// scratch.
type Runner struct {
	GitHub   github.Client
	Notifier notify.Notifier
	Catcher  tracker.Catcher
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *Metrics
	Options  digest.Options
}

// ToDoDigest fires the sprint-backlog digest, idle list included.
func (r *Runner) ToDoDigest() {
	r.runDigest(JobToDo, todoTitle, r.Config.Columns.ToDo, true)
}

// PullRequestDigest fires the review-queue digest, without the idle list.
func (r *Runner) PullRequestDigest() {
	r.runDigest(JobPR, prTitle, r.Config.Columns.PullRequests, false)
}

// MeetingReminder sends the fixed meeting ping.
func (r *Runner) MeetingReminder() {
	runID := uuid.NewString()
	logger := r.Logger.With("job", JobMeeting, "run_id", runID)

	ctx := context.Background()
	if err := r.Notifier.Send(ctx, digest.MeetingMessage(r.Config.MeetingMention)); err != nil {
		r.fail(ctx, logger, JobMeeting, runID, err)
		return
	}
	r.Metrics.RecordSuccess(JobMeeting)
	logger.Info("meeting reminder sent")
}

func (r *Runner) runDigest(job, title, columnID string, includeIdle bool) {
	runID := uuid.NewString()
	logger := r.Logger.With("job", job, "run_id", runID)
	start := time.Now()

	ctx := context.Background()
	if err := r.digestOnce(ctx, logger, title, columnID, includeIdle); err != nil {
		r.fail(ctx, logger, job, runID, err)
		return
	}
	r.Metrics.RecordSuccess(job)
	logger.Info("digest sent", "duration", time.Since(start).String())
}

func (r *Runner) digestOnce(ctx context.Context, logger *slog.Logger, title, columnID string, includeIdle bool) error {
	roster, err := digest.ResolveRoster(ctx, r.GitHub, r.Config.Mention, r.Config.GitHub.Organization)
	if err != nil {
		return err
	}

	cards, err := r.GitHub.ColumnCards(ctx, columnID)
	if err != nil {
		return errors.Wrap(err, "fetch column cards")
	}
	logger.Debug("fetched cards", "count", len(cards), "members", len(roster))

	classifier := digest.NewClassifier(r.GitHub, r.Catcher, logger, r.Options)
	members := classifier.Classify(ctx, roster, cards)

	message := digest.Render(title, members, includeIdle, r.Config.Bots)
	return r.Notifier.Send(ctx, message)
}

// fail records and reports a whole-firing failure. The next scheduled firing
// proceeds independently.
func (r *Runner) fail(ctx context.Context, logger *slog.Logger, job, runID string, err error) {
	r.Metrics.RecordFailure(job)
	logger.Error("job failed", "error", err.Error())
	r.Catcher.Send(ctx, err, map[string]any{"job": job, "run_id": runID})
}
