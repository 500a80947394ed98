// Package orchestrator sequences a full engagement run: mention ingest,
// per-topic research and selection, the engagement passes, an optional
// original post, and unfollow maintenance. Phases are independent; one
// failing phase never aborts the rest of the run.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"growthbot/internal/analytics"
	"growthbot/internal/config"
	"growthbot/internal/engage"
	"growthbot/internal/llm"
	"growthbot/internal/metrics"
	"growthbot/internal/policy"
	"growthbot/internal/ratelimit"
	"growthbot/internal/research"
	"growthbot/internal/selector"
	"growthbot/internal/store"
	"growthbot/internal/xclient"
)

// candidatePoolSize is how many scored candidates research keeps per
// topic before selection narrows them down.
const candidatePoolSize = 30

// unfollowBatchSize bounds unfollow maintenance within one run.
const unfollowBatchSize = 5

// Orchestrator wires the long-lived dependencies; Run builds the
// per-run state (session, budget, runner) fresh each time.
type Orchestrator struct {
	cfg     config.Config
	client  xclient.Client
	db      *store.DB
	limiter *ratelimit.Limiter
	policy  *policy.Policy
	drafter *llm.Drafter

	rng *rand.Rand
	now func() time.Time
}

func New(cfg config.Config, client xclient.Client, db *store.DB, limiter *ratelimit.Limiter, pol *policy.Policy, drafter *llm.Drafter) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		client:  client,
		db:      db,
		limiter: limiter,
		policy:  pol,
		drafter: drafter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// RunReport aggregates what one run did.
type RunReport struct {
	RunID    string
	Topics   []string
	Mentions int
	Likes    int
	Replies  int
	Retweets int
	Follows  int
	Unfollow int
	Posted   bool
	Duration time.Duration
}

// Run executes one full engagement pass. The only error it returns is a
// failure to resolve the authenticated account, without which no write
// action can be addressed.
func (o *Orchestrator) Run(ctx context.Context) (RunReport, error) {
	start := o.now()

	self, err := o.client.GetUserByUsername(ctx, o.cfg.Account.Username)
	if err != nil {
		return RunReport{}, fmt.Errorf("resolve account %q: %w", o.cfg.Account.Username, err)
	}

	session := selector.NewSession()
	runner := engage.NewRunner(o.cfg, o.client, o.db, o.limiter, o.policy, o.drafter, session, self)
	report := RunReport{RunID: session.RunID}
	log.Info("run starting", "run_id", session.RunID, "account", self.Username, "dry_run", o.cfg.Behavior.DryRun)

	// Mentions first so the talk-back rule sees today's inbound traffic.
	report.Mentions = runner.MentionsRun(ctx)

	budget := research.NewBudget(o.cfg.Behavior.MaxSearchCallsPerRun)
	engine := research.NewEngine(o.client, o.cfg.Behavior.MaxResearchQueries,
		o.cfg.Behavior.MaxResultsPerQuery, o.cfg.Scoring.CandidateFloor, budget)

	topics := o.pickTopics()
	report.Topics = topics
	for _, topic := range topics {
		if ctx.Err() != nil {
			break
		}
		candidates := engine.CollectCandidates(ctx, topic, candidatePoolSize)
		if len(candidates) == 0 {
			log.Info("no candidates for topic", "topic", topic)
			continue
		}
		if err := o.db.InsertTopic(ctx, topic, "config", o.now().UTC()); err != nil {
			log.Error("topic record failed", "topic", topic, "err", err)
		}

		selectTarget := o.cfg.Behavior.ReplyTargetsPerTopic + o.cfg.Behavior.LikeTargetsPerTopic
		picks, buckets, eligible := selector.Select(candidates, selectTarget,
			session.EngagedUsernames("reply"), self.Username)
		log.Info("targets selected", "topic", topic,
			"picked", len(picks), "eligible", eligible, "buckets", buckets)

		// Leave headroom near the daily ceiling instead of burning the last
		// slots mid-topic.
		if o.limiter.SafeToOperate(ctx, "reply", o.cfg.Limits.Ceiling("reply")) {
			report.Replies += runner.ReplyRun(ctx, picks, o.cfg.Behavior.ReplyTargetsPerTopic)
		}
		if o.limiter.SafeToOperate(ctx, "like", o.cfg.Limits.Ceiling("like")) {
			report.Likes += runner.LikeRun(ctx, candidates, o.cfg.Behavior.LikeTargetsPerTopic)
		}
		report.Retweets += runner.RetweetRun(ctx, picks, 1)
		report.Follows += runner.FollowRun(ctx, candidates, 1)
	}

	if len(topics) > 0 && ctx.Err() == nil {
		report.Posted = runner.PostRun(ctx, topics[0], false)
	}

	if ctx.Err() == nil {
		report.Unfollow = runner.UnfollowRun(ctx, unfollowBatchSize)
	}

	o.limiter.PurgeOld(ctx)

	if summary, err := analytics.New(o.db).Summarize(ctx, 7); err == nil {
		log.Info("weekly summary", "actions", summary.Actions,
			"followed", summary.Followed, "followback_rate", summary.Followback)
	}

	report.Duration = o.now().Sub(start)
	metrics.ObserveRunDuration(report.Duration.Seconds())
	log.Info("run finished", "run_id", report.RunID,
		"likes", report.Likes, "replies", report.Replies, "retweets", report.Retweets,
		"follows", report.Follows, "unfollows", report.Unfollow,
		"posted", report.Posted, "duration", report.Duration.Round(time.Second))
	return report, nil
}

// pickTopics shuffles the configured topics and keeps the per-run cap.
func (o *Orchestrator) pickTopics() []string {
	topics := make([]string, len(o.cfg.Account.Topics))
	copy(topics, o.cfg.Account.Topics)
	o.rng.Shuffle(len(topics), func(i, j int) { topics[i], topics[j] = topics[j], topics[i] })
	if max := o.cfg.Behavior.MaxTopicsPerRun; max > 0 && len(topics) > max {
		topics = topics[:max]
	}
	return topics
}

// Runner exposes a single-purpose engage.Runner for the CLI subcommands
// that drive one action kind directly.
func (o *Orchestrator) Runner(ctx context.Context) (*engage.Runner, error) {
	self, err := o.client.GetUserByUsername(ctx, o.cfg.Account.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve account %q: %w", o.cfg.Account.Username, err)
	}
	return engage.NewRunner(o.cfg, o.client, o.db, o.limiter, o.policy, o.drafter, selector.NewSession(), self), nil
}

// Research exposes a fresh research engine for the CLI research command.
func (o *Orchestrator) Research() *research.Engine {
	budget := research.NewBudget(o.cfg.Behavior.MaxSearchCallsPerRun)
	return research.NewEngine(o.client, o.cfg.Behavior.MaxResearchQueries,
		o.cfg.Behavior.MaxResultsPerQuery, o.cfg.Scoring.CandidateFloor, budget)
}
