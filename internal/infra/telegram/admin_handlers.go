package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"review_cycle_service/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Error: you are not allowed to run this command."

var (
	launchMenu      = &telebot.ReplyMarkup{}
	btnLaunchPeer   = launchMenu.Data("Launch evaluations", "launch_peer")
	btnLaunchLeader = launchMenu.Data("Launch leader evaluations", "launch_leader")
)

// RegisterAdminHandlers registers the cycle administration commands.
// Launch commands only queue work: the reply confirms acceptance, not completion.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/cycles", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/cycles",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		overviews, err := adminService.ListCycles(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list cycles")
			return c.Send(fmt.Sprintf("Could not list cycles: %s", err.Error()))
		}
		if len(overviews) == 0 {
			return c.Send("No review cycles found.")
		}

		var response strings.Builder
		response.WriteString("--- Review cycles ---\n")
		for _, o := range overviews {
			response.WriteString(formatCycleLine(o))
			response.WriteString("\n")
		}
		return c.Send(response.String())
	})

	b.Handle("/cycle", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/cycle",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		cycleID, err := parseCycleID(c.Args())
		if err != nil {
			return c.Send("Usage: /cycle <CycleID>")
		}

		overview, err := adminService.GetCycle(ctx, c.Sender().ID, cycleID)
		if err != nil {
			if errors.Is(err, app.ErrCycleNotFound) {
				return c.Send(fmt.Sprintf("Cycle %d not found.", cycleID))
			}
			handlerLogger.WithError(err).Error("Failed to get cycle")
			return c.Send(fmt.Sprintf("Could not load cycle %d: %s", cycleID, err.Error()))
		}

		menu := &telebot.ReplyMarkup{}
		id := strconv.FormatInt(cycleID, 10)
		menu.Inline(menu.Row(
			menu.Data(btnLaunchPeer.Text, btnLaunchPeer.Unique, id),
			menu.Data(btnLaunchLeader.Text, btnLaunchLeader.Unique, id),
		))
		return c.Send(formatCycleDetail(overview), menu)
	})

	b.Handle("/launch", func(c telebot.Context) error {
		return handleLaunch(ctx, c, c.Args(), adminService.LaunchEvaluations, adminTelegramID, baseLogger.WithField("handler", "/launch"))
	})

	b.Handle("/launch_leader", func(c telebot.Context) error {
		return handleLaunch(ctx, c, c.Args(), adminService.LaunchLeaderEvaluations, adminTelegramID, baseLogger.WithField("handler", "/launch_leader"))
	})

	b.Handle(&btnLaunchPeer, func(c telebot.Context) error {
		if err := handleLaunch(ctx, c, []string{c.Callback().Data}, adminService.LaunchEvaluations, adminTelegramID, baseLogger.WithField("handler", "btn_launch_peer")); err != nil {
			return err
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Accepted"})
	})

	b.Handle(&btnLaunchLeader, func(c telebot.Context) error {
		if err := handleLaunch(ctx, c, []string{c.Callback().Data}, adminService.LaunchLeaderEvaluations, adminTelegramID, baseLogger.WithField("handler", "btn_launch_leader")); err != nil {
			return err
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Accepted"})
	})

	b.Handle("/sweep", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/sweep",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		}

		report, err := adminService.RunSweep(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Manual sweep failed")
			return c.Send(fmt.Sprintf("Sweep failed: %s", err.Error()))
		}
		handlerLogger.Info("Manual sweep finished")
		return c.Send(formatTickReport(report))
	})
}

type launchFunc func(ctx context.Context, performingAdminID int64, cycleID int64) (app.Accepted, error)

func handleLaunch(ctx context.Context, c telebot.Context, args []string, launch launchFunc, adminTelegramID int64, handlerLogger *logrus.Entry) error {
	handlerLogger = handlerLogger.WithField("sender_id", c.Sender().ID)
	if c.Sender().ID != adminTelegramID {
		handlerLogger.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	cycleID, err := parseCycleID(args)
	if err != nil {
		handlerLogger.WithField("args", args).Warn("Invalid command format")
		return c.Send("Usage: /launch <CycleID> or /launch_leader <CycleID>")
	}

	accepted, err := launch(ctx, c.Sender().ID, cycleID)
	if err != nil {
		if errors.Is(err, app.ErrAdminNotAuthorized) {
			return c.Send(unauthorizedReply)
		}
		handlerLogger.WithError(err).Error("Failed to queue launch")
		return c.Send(fmt.Sprintf("Could not queue launch: %s", err.Error()))
	}

	handlerLogger.WithFields(logrus.Fields{
		"cycle_id": accepted.CycleID,
		"task_id":  accepted.TaskID,
	}).Info("Launch accepted")
	return c.Send(formatAccepted(accepted))
}

func parseCycleID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one argument, got %d", len(args))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid cycle id %q", args[0])
	}
	return id, nil
}

const dateLayout = "2006-01-02"

func formatCycleLine(o *app.CycleOverview) string {
	line := fmt.Sprintf("#%d %s [%s] %s..%s",
		o.Cycle.ID, o.Cycle.Name, o.Cycle.Status,
		o.Cycle.StartDate.Format(dateLayout), o.Cycle.EndDate.Format(dateLayout))
	if o.Desired != o.Cycle.Status {
		line += fmt.Sprintf(" (next sweep: %s)", o.Desired)
	}
	return line
}

func formatCycleDetail(o *app.CycleOverview) string {
	var sb strings.Builder
	sb.WriteString(formatCycleLine(o))
	sb.WriteString("\n")
	b := o.Boundaries
	sb.WriteString(fmt.Sprintf("In progress: %s..%s\n", b.Start.Format(dateLayout), b.InProgressEnd.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Review: %s..%s\n", b.ReviewStart.Format(dateLayout), b.ReviewEnd.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("Equalization: %s..%s\n", b.EqualizationStart.Format(dateLayout), b.EqualizationEnd.Format(dateLayout)))
	sb.WriteString("Evaluations:\n")
	for _, tc := range o.Evaluations {
		sb.WriteString(fmt.Sprintf("  %s: %d\n", tc.Type, tc.Count))
	}
	return sb.String()
}

func formatAccepted(a app.Accepted) string {
	return fmt.Sprintf("Accepted: %s for cycle %d (task %s). Progress is reported in the logs.", a.Kind, a.CycleID, a.TaskID)
}

func formatTickReport(r *app.TickReport) string {
	return fmt.Sprintf("Sweep done: %d checked, %d transitioned, %d failed.", r.Checked, r.Transitioned, r.Failed)
}
