package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/YoshitsuguKoike/rljournal/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/rljournal/internal/application/service"
	"github.com/YoshitsuguKoike/rljournal/internal/domain/model/journal"
)

func newInitCmd(rt *runtime) *cobra.Command {
	var id, test, pkg string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the journal of a run unless it already exists",
		Args:  requireFlags("id", "test", "package"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := rt.svc.Init(cmd.Context(), id, test, pkg)
			if err != nil {
				return err
			}
			rt.logger.Debug("init", zap.String("id", id), zap.Bool("created", created))
			return nil
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&test, "test", "t", "", "test name")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package under test")
	return cmd
}

func newDumpCmd(rt *runtime) *cobra.Command {
	var id, format, legacyType string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the journal document",
		Args:  requireFlags("id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = legacyType
			}
			if format == "" {
				return usageErrorf("required flag(s) %q not set", []string{"format"})
			}
			return rt.svc.Dump(cmd.Context(), id, format, cmd.OutOrStdout())
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVar(&format, "format", "", "raw or pretty")
	cmd.Flags().StringVar(&legacyType, "type", "", "alias of --format")
	return cmd
}

func newPrintLogCmd(rt *runtime) *cobra.Command {
	var (
		id       string
		severity string
		full     bool
	)
	cmd := &cobra.Command{
		Use:   "printlog",
		Short: "Render the journal as a test protocol",
		Args:  requireFlags("id", "severity"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			threshold := journal.Severity(severity)
			if _, err := rt.severities.Allowed(threshold); err != nil {
				return err
			}
			j, err := rt.svc.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			report := presenter.NewReportPresenterWithConsole(presenter.NewConsole(cmd.OutOrStdout()), rt.severities, rt.now)
			summary, err := report.Render(j, presenter.ReportOptions{Threshold: threshold, Full: full})
			if err != nil {
				return err
			}
			rt.logger.Debug("printlog",
				zap.Int("phases_passed", summary.PhasesPassed),
				zap.Int("phases_failed", summary.PhasesFailed),
			)
			return nil
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&severity, "severity", "s", "", "lowest message severity shown")
	cmd.Flags().BoolVarP(&full, "full-journal", "f", false, "include hardware details")
	return cmd
}

func newAddPhaseCmd(rt *runtime) *cobra.Command {
	var id, name, phaseType string
	cmd := &cobra.Command{
		Use:   "addphase",
		Short: "Open a new phase",
		Args:  requireFlags("id", "name", "type"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.svc.AddPhase(cmd.Context(), id, name, phaseType); err != nil {
				return err
			}
			presenter.NewConsole(cmd.OutOrStdout()).HeadLog(name)
			return nil
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&name, "name", "n", "", "phase name")
	cmd.Flags().StringVar(&phaseType, "type", "", "result reported when the phase fails")
	return cmd
}

func newLogCmd(rt *runtime) *cobra.Command {
	var id, message, severity string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a message in the current phase",
		Args:  requireFlags("id", "message"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.svc.AddMessage(cmd.Context(), id, message, journal.Severity(severity))
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text")
	cmd.Flags().StringVarP(&severity, "severity", "s", journal.SeverityLog.String(), "message severity")
	return cmd
}

func newTestCmd(rt *runtime) *cobra.Command {
	var id, message, result string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Record an assertion in the current phase",
		Args:  requireFlags("id", "message"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := rt.svc.AddTest(cmd.Context(), id, message, result); err != nil {
				return err
			}
			presenter.NewConsole(cmd.OutOrStdout()).Log(message, result)
			return nil
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&message, "message", "m", "", "assertion label")
	cmd.Flags().StringVarP(&result, "result", "r", journal.ResultFail, "PASS or FAIL")
	return cmd
}

func newMetricCmd(rt *runtime) *cobra.Command {
	var id, name, metricType, value, tolerance string
	cmd := &cobra.Command{
		Use:   "metric",
		Short: "Record a named measurement in the current phase",
		Args:  requireFlags("id", "name", "type", "value", "tolerance"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := parseFloat("value", value)
			if err != nil {
				return err
			}
			tol, err := parseFloat("tolerance", tolerance)
			if err != nil {
				return err
			}
			return rt.svc.AddMetric(cmd.Context(), id, metricType, name, v, tol)
		},
	}
	addIDFlag(cmd, &id)
	cmd.Flags().StringVarP(&name, "name", "n", "", "metric name, unique within the phase")
	cmd.Flags().StringVar(&metricType, "type", "", "metric type")
	cmd.Flags().StringVarP(&value, "value", "v", "", "measured value")
	cmd.Flags().StringVar(&tolerance, "tolerance", "", "accepted deviation")
	return cmd
}

func newFinPhaseCmd(rt *runtime) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "finphase",
		Short: "Close the current phase; exit status is its failure count",
		Args:  requireFlags("id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			outcome, err := rt.svc.FinishPhase(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return stateStatus(service.CapExitCode(outcome.Score))
		},
	}
	addIDFlag(cmd, &id)
	return cmd
}

func newTestStateCmd(rt *runtime) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "teststate",
		Short: "Exit with the number of failed assertions in all phases",
		Args:  requireFlags("id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			failed, err := rt.svc.TestState(cmd.Context(), id)
			if err != nil {
				return err
			}
			return stateStatus(failed)
		},
	}
	addIDFlag(cmd, &id)
	return cmd
}

func newPhaseStateCmd(rt *runtime) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "phasestate",
		Short: "Exit with the number of failed assertions in the current phase",
		Args:  requireFlags("id"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			failed, err := rt.svc.PhaseState(cmd.Context(), id)
			if err != nil {
				return err
			}
			return stateStatus(failed)
		},
	}
	addIDFlag(cmd, &id)
	return cmd
}

func newNewIDCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "newid",
		Short: "Print a fresh run id",
		Args:  requireFlags(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), journal.NewRunID(rt.now(), nil))
			return nil
		},
	}
}

func parseFloat(flag, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, v, err)
	}
	return f, nil
}
