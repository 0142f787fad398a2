package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/blkcor/cogent/internal/config"
	"github.com/blkcor/cogent/internal/engine"
	"github.com/blkcor/cogent/internal/memory"
	"github.com/blkcor/cogent/internal/providers"
	"github.com/blkcor/cogent/internal/tools"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("cogent: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cogent", flag.ExitOnError)
	rootFlag := fs.String("root", "", "Workspace root (default: current directory)")
	taskFlag := fs.String("task", "", "Run a single task and exit; omit for the interactive prompt")
	modeFlag := fs.String("mode", "", "Pin the reasoning mode: reactive, plan-then-solve, critique-and-revise")
	policyFlag := fs.String("approval", "", "Approval policy: permissive, edit-auto, standard, strict")
	maxStepsFlag := fs.Int("max-steps", 0, "Maximum reasoning steps per task")
	timeoutFlag := fs.Duration("timeout", 0, "Per-task timeout, e.g. 5m")
	noMemoryFlag := fs.Bool("no-memory", false, "Disable long-term memory")

	if err := fs.Parse(args); err != nil {
		return err
	}

	root := *rootFlag
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		root = cwd
	}

	mgr, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}

	llm, modelName, err := providers.NewLLMClientFromEnv()
	if err != nil {
		return err
	}
	if cfg.Model != "" {
		modelName = cfg.Model
	}

	policy := engine.PolicyStandard
	if cfg.ApprovalPolicy != "" {
		policy = engine.ApprovalPolicy(cfg.ApprovalPolicy)
	}
	if *policyFlag != "" {
		policy = engine.ApprovalPolicy(*policyFlag)
	}
	if !engine.ValidPolicy(policy) {
		return fmt.Errorf("unknown approval policy: %s", policy)
	}

	var store *memory.Store
	set := tools.DefaultToolSet()
	if !*noMemoryFlag {
		memDir := cfg.MemoryDir
		if memDir == "" {
			memDir = filepath.Join(filepath.Dir(mgr.GetConfigPath()), "memory")
		}
		store, err = memory.NewStore(ctx, memDir, nil)
		if err != nil {
			log.Printf("long-term memory unavailable: %v", err)
		} else {
			defer store.Close()
			set.Memory = true
		}
	}

	reg, err := tools.NewToolRegistry(root, set, store)
	if err != nil {
		return err
	}

	gate := engine.NewGate(policy, log.Default()).WithApprover(terminalApprover)

	builder := engine.NewAgentBuilder().
		WithLLM(llm).
		WithModel(modelName).
		WithToolRegistry(reg).
		WithGate(gate)

	if cfg.MaxSteps > 0 {
		builder.WithMaxSteps(cfg.MaxSteps)
	}
	if *maxStepsFlag > 0 {
		builder.WithMaxSteps(*maxStepsFlag)
	}
	if cfg.ContextBudget > 0 {
		builder.WithContextBudget(cfg.ContextBudget)
	}
	if *modeFlag != "" {
		builder.WithMode(engine.ReasoningMode(*modeFlag))
	}
	if *timeoutFlag > 0 {
		builder.WithRunTimeout(*timeoutFlag)
	}
	if store != nil {
		builder.WithRecaller(store)
	}

	agent, err := builder.Build()
	if err != nil {
		return err
	}

	// Policy changes in config.json take effect on running agents.
	watcher, werr := config.NewWatcher(mgr, func(c *config.Config) {
		if c.ApprovalPolicy != "" {
			gate.SetPolicy(engine.ApprovalPolicy(c.ApprovalPolicy))
			log.Printf("approval policy set to %s", c.ApprovalPolicy)
		}
	})
	if werr == nil {
		if serr := watcher.Start(); serr == nil {
			defer watcher.Stop()
		}
	}

	if *taskFlag != "" {
		return runOnce(ctx, agent, *taskFlag)
	}
	return runREPL(ctx, agent)
}

func runOnce(ctx context.Context, agent *engine.Agent, task string) error {
	res := agent.Execute(ctx, task)
	printResult(res)
	if !res.Success {
		os.Exit(1)
	}
	return nil
}

func runREPL(ctx context.Context, agent *engine.Agent) error {
	fmt.Println("cogent ready. Type a task, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		task := strings.TrimSpace(scanner.Text())
		if task == "" {
			continue
		}
		if task == "exit" || task == "quit" {
			break
		}

		start := time.Now()
		res := agent.Execute(ctx, task)
		printResult(res)
		fmt.Printf("(%s)\n", time.Since(start).Round(time.Millisecond))
	}
	return scanner.Err()
}

func printResult(res engine.RunResult) {
	status := "ok"
	if !res.Success {
		status = "failed"
	}
	fmt.Printf("\n[%s] mode=%s turns=%d tool_calls=%d duration=%dms\n%s\n",
		status, res.Metadata.Mode, res.Metadata.TurnCount, res.Metadata.ToolCallCount,
		res.Metadata.DurationMs, res.Result)
}

// terminalApprover prompts on stdin for flagged tool invocations.
func terminalApprover(ctx context.Context, toolName string, args map[string]any) (bool, error) {
	fmt.Printf("approve %s %v? [y/N] ", toolName, args)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
