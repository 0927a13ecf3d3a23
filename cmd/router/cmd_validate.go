package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"intentrouter/internal/config"
	"intentrouter/internal/logging"
	"intentrouter/internal/router"
	"intentrouter/internal/router/rules"
)

var (
	validateCorpus  string
	validateBackend string
	validateRules   string
	validateWatch   bool
	validateLimit   int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a rule engine agrees with the native strategy",
	Long: `Runs every scenario in the corpus through the native strategy and the selected
backend and reports disagreements. With --watch the check reruns whenever the
rule file or corpus changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := firstNonEmpty(validateBackend, cfg.Router.Backend)
		corpus := firstNonEmpty(validateCorpus, cfg.Router.Corpus)
		loader, err := rules.NewLoader(0)
		if err != nil {
			return err
		}

		ok, err := runValidate(cmd.Context(), cmd.OutOrStdout(), cfg, backend, corpus, loader)
		if err != nil {
			return err
		}
		if validateWatch {
			return watchValidate(cmd.Context(), cmd.OutOrStdout(), cfg, backend, corpus, loader)
		}
		if !ok {
			return fmt.Errorf("backend %s disagrees with the native strategy", backend)
		}
		return nil
	},
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateCorpus, "corpus", "", "Scenario corpus (YAML); default is the built-in corpus")
	f.StringVar(&validateBackend, "backend", "", "Backend to check: swipl, prolog, datalog")
	f.StringVar(&validateRules, "router", "", "Rule file for the selected backend")
	f.BoolVar(&validateWatch, "watch", false, "Re-run when the rule file or corpus changes")
	f.IntVar(&validateLimit, "parallel", 4, "Scenarios checked concurrently")
}

// runValidate prints one line per scenario and a summary. It reports false when
// any scenario fails.
func runValidate(ctx context.Context, w io.Writer, c *config.Config, backend, corpus string, loader *rules.Loader) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	scenarios, err := loadCorpus(corpus)
	if err != nil {
		return false, err
	}
	engine, err := newEngine(c, backend, validateRulesPath(c, backend), loader)
	if err != nil {
		return false, err
	}

	report, err := router.Validate(ctx, engine, scenarios, validateLimit)
	if err != nil {
		return false, err
	}

	fmt.Fprintln(w, header(fmt.Sprintf("Backend %s: %d scenario(s)", report.Backend, len(report.Results))))
	for _, r := range report.Results {
		mark := okStyle.Render("ok  ")
		if r.Failed() {
			mark = failStyle.Render("FAIL")
		}
		fmt.Fprintf(w, "%s %-40s %s\n", mark, r.Scenario.Name, r.Verdict)
		if r.Mismatch != "" {
			fmt.Fprintf(w, "     %s\n", r.Mismatch)
		}
	}

	failures := report.Failures()
	if len(failures) > 0 {
		fmt.Fprintln(w, failStyle.Render(fmt.Sprintf("%d failure(s)", len(failures))))
	} else {
		fmt.Fprintln(w, okStyle.Render("all scenarios agree"))
	}
	return report.OK(), nil
}

func loadCorpus(path string) ([]router.Scenario, error) {
	if path == "" {
		return router.DefaultScenarios()
	}
	return router.LoadScenarios(path)
}

func validateRulesPath(c *config.Config, backend string) string {
	if validateRules != "" {
		return validateRules
	}
	switch backend {
	case "swipl":
		return c.Router.DictRules
	case "prolog":
		return c.Router.ListRules
	case "datalog":
		return c.Router.DatalogRules
	}
	return ""
}

// watchValidate re-runs validation when a watched file is written. Events are
// debounced so an editor's save burst triggers a single run.
func watchValidate(ctx context.Context, w io.Writer, c *config.Config, backend, corpus string, loader *rules.Loader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	targets := map[string]bool{}
	for _, p := range []string{validateRulesPath(c, backend), corpus} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		// Watch the directory: editors often replace files rather than write them.
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("--watch needs a rule file (--router) or a corpus (--corpus)")
	}
	fmt.Fprintln(w, header("Watching for changes (Ctrl-C to stop)"))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if !targets[abs] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.EngineDebug("change detected: %s", ev)
			debounce = time.After(200 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryEngine).Warn("watcher error: %v", err)
		case <-debounce:
			debounce = nil
			logging.Engine("rules or corpus changed, re-running validation")
			loader.Purge()
			if _, err := runValidate(ctx, w, c, backend, corpus, loader); err != nil {
				fmt.Fprintln(w, failStyle.Render(err.Error()))
			}
		}
	}
}
