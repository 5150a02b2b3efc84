package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/agenda/internal/config"
	"github.com/hochfrequenz/agenda/internal/notify"
	"github.com/hochfrequenz/agenda/internal/schedule"
	"github.com/hochfrequenz/agenda/internal/tracker"
	"github.com/hochfrequenz/agenda/internal/triage"
)

var (
	todayFlag string
	cronExpr  string
)

func init() {
	sendCmd := &cobra.Command{
		Use:   "send CONF URL CHANNEL...",
		Short: "Compute today's agenda message and deliver it",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runSend,
	}
	sendCmd.Flags().StringVar(&todayFlag, "today", "", "override today's date (YYYY-MM-DD)")
	rootCmd.AddCommand(sendCmd)

	previewCmd := &cobra.Command{
		Use:   "preview CONF",
		Short: "Print today's agenda message without delivering it",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreview,
	}
	previewCmd.Flags().StringVar(&todayFlag, "today", "", "override today's date (YYYY-MM-DD)")
	rootCmd.AddCommand(previewCmd)

	serveCmd := &cobra.Command{
		Use:   "serve CONF URL CHANNEL...",
		Short: "Re-run the send on a cron schedule",
		Args:  cobra.MinimumNArgs(3),
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&cronExpr, "cron", "0 9 * * 1-5", "cron expression for scheduled sends")
	rootCmd.AddCommand(serveCmd)
}

// resolveToday normalizes the run's notion of "today" to a calendar day
// in the schedule's timezone.
func resolveToday(cfg *config.Config) (time.Time, error) {
	if todayFlag == "" {
		return schedule.Midnight(time.Now(), cfg.Location), nil
	}
	t, err := time.ParseInLocation("2006-01-02", todayFlag, cfg.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today %q: %w", todayFlag, err)
	}
	return t, nil
}

// composeMessage runs the full pipeline: evaluate the cycle, fetch the
// review queue when the slot wants it, and assemble the message. ok is
// false when there is nothing to send today.
func composeMessage(ctx context.Context, cfg *config.Config, searcher triage.Searcher, today time.Time) (string, bool, error) {
	slot, ref, ok := schedule.Evaluate(cfg, today)
	if !ok {
		return "", false, nil
	}

	var section []string
	if schedule.TriageEnabled(cfg, slot) {
		var err error
		section, err = triage.New(searcher, cfg.Triage).Section(ctx, today)
		if err != nil {
			return "", false, err
		}
	}

	msg, ok := schedule.Compose(cfg, slot, ref, section)
	return msg, ok, nil
}

func newSearcher() triage.Searcher {
	return tracker.New("", os.Getenv("GITHUB_TOKEN"))
}

func sendOnce(ctx context.Context, cfg *config.Config, notifier notify.Notifier, channels []string) error {
	today, err := resolveToday(cfg)
	if err != nil {
		return err
	}

	msg, ok, err := composeMessage(ctx, cfg, newSearcher(), today)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("no message today")
		return nil
	}

	for _, ch := range channels {
		if err := notifier.Send(msg, ch); err != nil {
			return fmt.Errorf("deliver to %s: %w", ch, err)
		}
		log.Printf("sent to %s: %q", ch, msg)
	}
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	return sendOnce(cmd.Context(), cfg, notify.NewWebhookNotifier(args[1]), args[2:])
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	today, err := resolveToday(cfg)
	if err != nil {
		return err
	}

	msg, ok, err := composeMessage(cmd.Context(), cfg, newSearcher(), today)
	if err != nil {
		return err
	}
	if !ok {
		log.Println("no message today")
		return nil
	}

	fmt.Println(msg)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	notifier := notify.NewWebhookNotifier(args[1])
	channels := args[2:]

	c := cron.New()
	if _, err := c.AddFunc(cronExpr, func() {
		if err := sendOnce(context.Background(), cfg, notifier, channels); err != nil {
			log.Printf("agenda run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("cron expression %q: %w", cronExpr, err)
	}

	log.Printf("serving on schedule %q", cronExpr)
	c.Run()
	return nil
}
