package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"growthbot/internal/analytics"
	"growthbot/internal/config"
	"growthbot/internal/llm"
	"growthbot/internal/logging"
	"growthbot/internal/metrics"
	"growthbot/internal/orchestrator"
	"growthbot/internal/policy"
	"growthbot/internal/ratelimit"
	"growthbot/internal/store"
	"growthbot/internal/xclient"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "run":
		cmdRun()
	case "research":
		cmdResearch()
	case "reply":
		cmdAction("reply")
	case "like":
		cmdAction("like")
	case "follow":
		cmdAction("follow")
	case "retweet":
		cmdAction("retweet")
	case "unfollow":
		cmdUnfollow()
	case "post":
		cmdPost()
	case "mentions":
		cmdMentions()
	case "status":
		cmdStatus()
	case "report":
		cmdReport()
	case "serve":
		cmdServe()
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println("Usage: growthbot <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./growthbot.yaml")
	fmt.Println("  run         Execute one full engagement run")
	fmt.Println("  research    Collect and score candidates for a topic")
	fmt.Println("  reply       Reply pass for one topic")
	fmt.Println("  like        Like pass for one topic")
	fmt.Println("  follow      Follow pass for one topic")
	fmt.Println("  retweet     Retweet pass for one topic")
	fmt.Println("  unfollow    Unfollow stale non-followbacks")
	fmt.Println("  post        Draft and publish one original post")
	fmt.Println("  mentions    Ingest inbound mentions")
	fmt.Println("  status      Show today's rate-limit usage")
	fmt.Println("  report      Show an activity summary")
	fmt.Println("  serve       Run forever on an interval, with metrics")
}

// app bundles everything a command needs. close must be called when done.
type app struct {
	cfg     config.Config
	db      *store.DB
	limiter *ratelimit.Limiter
	orch    *orchestrator.Orchestrator
}

func (a *app) close() { _ = a.db.Close() }

func buildApp(cfgPath string) *app {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	client := xclient.NewHTTPClient(cfg.Credentials.BearerToken, cfg.Credentials.UserToken)
	limiter := ratelimit.New(db, cfg.Behavior.DryRun)
	pol := policy.New(db)
	drafter := llm.NewDrafter(llm.NewHTTPGenerator(cfg.LLM), cfg.Scoring.MaxDrafts, cfg.Scoring.DraftFloor)

	return &app{
		cfg:     cfg,
		db:      db,
		limiter: limiter,
		orch:    orchestrator.New(cfg, client, db, limiter, pol, drafter),
	}
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./growthbot.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	fmt.Println("Config written to:", abs)
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := a.orch.Run(ctx)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	printReport(report)
}

func cmdResearch() {
	fs := flag.NewFlagSet("research", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	topic := fs.String("topic", "", "topic to research")
	limit := fs.Int("limit", 20, "max candidates")
	_ = fs.Parse(os.Args[2:])
	if *topic == "" {
		fmt.Println("error: -topic is required")
		os.Exit(1)
	}
	a := buildApp(*cfgPath)
	defer a.close()

	candidates := a.orch.Research().CollectCandidates(context.Background(), *topic, *limit)
	for _, c := range candidates {
		fmt.Printf("@%-15s score=%5.1f likes=%-4d %s\n",
			c.Author.Username, c.CandidateScore, c.LikeCount, truncate(c.Text, 80))
	}
	fmt.Printf("%d candidates\n", len(candidates))
}

// cmdAction drives one engagement pass of a single kind for one topic.
func cmdAction(action string) {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	topic := fs.String("topic", "", "topic to engage on")
	count := fs.Int("count", 2, "max actions")
	_ = fs.Parse(os.Args[2:])
	if *topic == "" {
		fmt.Println("error: -topic is required")
		os.Exit(1)
	}
	a := buildApp(*cfgPath)
	defer a.close()
	ctx := context.Background()

	runner, err := a.orch.Runner(ctx)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	candidates := a.orch.Research().CollectCandidates(ctx, *topic, 30)
	if len(candidates) == 0 {
		fmt.Println("no candidates")
		return
	}

	performed := 0
	switch action {
	case "reply":
		performed = runner.ReplyRun(ctx, candidates, *count)
	case "like":
		performed = runner.LikeRun(ctx, candidates, *count)
	case "follow":
		performed = runner.FollowRun(ctx, candidates, *count)
	case "retweet":
		performed = runner.RetweetRun(ctx, candidates, *count)
	}
	fmt.Printf("%s: %d performed\n", action, performed)
}

func cmdUnfollow() {
	fs := flag.NewFlagSet("unfollow", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	count := fs.Int("count", 5, "max unfollows")
	nonFollowers := fs.Bool("non-followers", false, "also trim untracked accounts that never followed back")
	sweep := fs.Bool("sweep", false, "only reconcile followback state, no unfollows")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()
	ctx := context.Background()

	runner, err := a.orch.Runner(ctx)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if *sweep {
		fmt.Printf("followbacks marked: %d\n", runner.FollowbackSweep(ctx))
		return
	}
	n := runner.UnfollowRun(ctx, *count)
	if *nonFollowers {
		n += runner.UnfollowNonFollowers(ctx, *count)
	}
	fmt.Printf("unfollow: %d performed\n", n)
}

func cmdPost() {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	topic := fs.String("topic", "", "topic to post about")
	force := fs.Bool("force", false, "post even outside peak hours")
	_ = fs.Parse(os.Args[2:])
	if *topic == "" {
		fmt.Println("error: -topic is required")
		os.Exit(1)
	}
	a := buildApp(*cfgPath)
	defer a.close()
	ctx := context.Background()

	runner, err := a.orch.Runner(ctx)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if runner.PostRun(ctx, *topic, *force) {
		fmt.Println("posted")
	} else {
		fmt.Println("nothing posted")
	}
}

func cmdMentions() {
	fs := flag.NewFlagSet("mentions", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()
	ctx := context.Background()

	runner, err := a.orch.Runner(ctx)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	n := runner.MentionsRun(ctx)
	fmt.Printf("mentions: %d stored\n", n)
}

func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()

	status := a.limiter.Status(context.Background(), a.cfg.Limits)
	for _, action := range []string{"like", "retweet", "follow", "unfollow", "post", "reply"} {
		s := status[action]
		fmt.Printf("%-9s %3d / %3d (remaining %d)\n", action, s.Count, s.Ceiling, s.Remaining)
	}
}

func cmdReport() {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	days := fs.Int("days", 7, "window in days")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()

	summary, err := analytics.New(a.db).Summarize(context.Background(), *days)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	b, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(b))
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./growthbot.yaml", "config path")
	interval := fs.Duration("interval", 4*time.Hour, "time between runs")
	_ = fs.Parse(os.Args[2:])
	a := buildApp(*cfgPath)
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := metrics.NewServer(addr, func(ctx context.Context) any {
			return a.limiter.Status(ctx, a.cfg.Limits)
		})
		go func() {
			fmt.Println("metrics listening on", addr)
			if err := srv.ListenAndServe(); err != nil {
				fmt.Println("metrics server:", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	for {
		report, err := a.orch.Run(ctx)
		if err != nil {
			fmt.Println("run error:", err)
		} else {
			printReport(report)
		}
		select {
		case <-time.After(*interval):
		case <-ctx.Done():
			fmt.Println("shutting down")
			return
		}
	}
}

func printReport(r orchestrator.RunReport) {
	fmt.Printf("run %s: likes=%d replies=%d retweets=%d follows=%d unfollows=%d posted=%v mentions=%d (%s)\n",
		r.RunID, r.Likes, r.Replies, r.Retweets, r.Follows, r.Unfollow, r.Posted, r.Mentions,
		r.Duration.Round(time.Second))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
