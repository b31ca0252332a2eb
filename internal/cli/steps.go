package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/shopload/internal/db"
	"github.com/vvka-141/shopload/internal/db/manager"
	"github.com/vvka-141/shopload/internal/files/filesystem"
	"github.com/vvka-141/shopload/internal/files/loader"
	"github.com/vvka-141/shopload/internal/logging"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// step is one DataManager operation.
type step func(ctx context.Context, mgr shopload.DataManager) error

func stepCheck(ctx context.Context, mgr shopload.DataManager) error {
	return mgr.TestConnection(ctx)
}

func stepCreateTables(ctx context.Context, mgr shopload.DataManager) error {
	return mgr.CreateTables(ctx)
}

func stepImport(ctx context.Context, mgr shopload.DataManager) error {
	return mgr.ImportCSVData(ctx)
}

func stepVerify(ctx context.Context, mgr shopload.DataManager) error {
	return mgr.VerifyData(ctx)
}

// stepFullRun gates on the connection check and table creation only. The
// sample is printed even when the import fails, and the import error is
// still what the run returns.
func stepFullRun(ctx context.Context, mgr shopload.DataManager) error {
	if err := stepCheck(ctx, mgr); err != nil {
		return err
	}
	if err := stepCreateTables(ctx, mgr); err != nil {
		return err
	}
	importErr := stepImport(ctx, mgr)
	verifyErr := stepVerify(ctx, mgr)
	if importErr != nil {
		return importErr
	}
	return verifyErr
}

func newStepCmd(workDir, use, short string, s step) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          RequireNoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, workDir, s)
		},
	}
}

// runSteps wires the logger, connector and data manager from the resolved
// settings and runs steps in order, stopping at the first failure.
func runSteps(cmd *cobra.Command, workDir string, steps ...step) error {
	cfg, err := resolveSettings(cmd, workDir)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Verbose:  cfg.run.Verbose,
		LogFile:  cfg.logFile,
		Console:  cmd.ErrOrStderr(),
		Compress: true,
	})
	if err != nil {
		return fmt.Errorf("%w: cannot open log file: %w", shopload.ErrInvalidConfig, err)
	}
	defer logger.Close()

	logger.Verbose("Run %s: %s", logger.RunID(), cfg.describe())

	connector, err := db.NewConnector(cfg.conn, cfg.retry, logger)
	if err != nil {
		logger.Error("Invalid connection settings: %v", err)
		return err
	}

	source := loader.New(filesystem.NewOSFileSystem(), logger)
	mgr := manager.New(connector, source, logger, cmd.OutOrStdout(), cfg.run)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, s := range steps {
		if err := s(ctx, mgr); err != nil {
			return err
		}
	}
	return nil
}
