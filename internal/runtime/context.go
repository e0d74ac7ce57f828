// Package runtime holds the resources shared by the commands of one process:
// settings, build metadata, the logger and the two database connections.
package runtime

import (
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/tphakala/premigrate/internal/buildinfo"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/legacy"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
	"github.com/tphakala/premigrate/internal/observability"
	"github.com/tphakala/premigrate/internal/reconcile"
)

// Context contains the runtime state of one process. Settings is filled in
// by the root command before any subcommand runs.
type Context struct {
	Settings *conf.Settings
	Build    *buildinfo.Context
	Log      logger.Logger
	Metrics  *observability.Metrics

	source      *datastore.Manager
	destination *datastore.Manager
	closeLog    func() error
}

// New creates a Context for the given build.
func New(build *buildinfo.Context) *Context {
	return &Context{Build: build}
}

// InitLogger creates the logger from the logging settings. Logs go to
// stdout and, when configured, to a JSON file as well.
func (c *Context) InitLogger(stdout io.Writer) error {
	level := logger.ParseLevel(c.Settings.Logging.Level)
	if c.Settings.Debug {
		level = logger.LogLevelDebug
	}
	tz, err := c.Settings.Migration.Location()
	if err != nil {
		tz = time.UTC
	}

	if c.Settings.Logging.File == "" {
		c.Log = logger.NewSlogLogger(stdout, level, tz)
		c.closeLog = func() error { return nil }
		return nil
	}

	log, err := logger.NewSlogLoggerWithFile(c.Settings.Logging.File, stdout, level, tz)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "open_log_file").
			Build()
	}
	c.Log = log
	c.closeLog = log.Close
	return nil
}

// OpenDatabases connects to the legacy and destination stores. The
// destination schema is created when migration.createschema is set.
func (c *Context) OpenDatabases() error {
	src, err := datastore.Open(&c.Settings.Source, c.Log.Module("source"))
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryInfrastructure).
			Context("store", "source").
			Context("location", c.Settings.Source.Location()).
			Build()
	}
	c.source = src

	dst, err := datastore.Open(&c.Settings.Destination, c.Log.Module("destination"))
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryInfrastructure).
			Context("store", "destination").
			Context("location", c.Settings.Destination.Location()).
			Build()
	}
	c.destination = dst

	if c.Settings.Migration.CreateSchema {
		if err := dst.Initialize(); err != nil {
			return errors.New(err).
				Category(errors.CategoryInfrastructure).
				Context("operation", "create_schema").
				Build()
		}
	}

	c.Log.Info("databases connected",
		logger.String("source", src.Location()),
		logger.String("destination", dst.Location()))
	return nil
}

// InitMetrics creates the metric registry.
func (c *Context) InitMetrics() error {
	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	c.Metrics = m
	return nil
}

// Writer returns the destination writer.
func (c *Context) Writer() *datastore.Writer {
	return datastore.NewWriter(c.destination.DB())
}

// State returns the run state manager of the destination.
func (c *Context) State() *datastore.StateManager {
	return datastore.NewStateManager(c.destination.DB())
}

// Deps builds the dependencies of the migration engine for one run.
func (c *Context) Deps() (*migration.Deps, error) {
	ms := &c.Settings.Migration

	loc, err := ms.Location()
	if err != nil {
		return nil, errors.New(err).Category(errors.CategoryConfiguration).Build()
	}

	ref, err := conf.LoadReferenceData(ms.ReferenceFile)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("reference_file", ms.ReferenceFile).
			Build()
	}
	ref = ref.WithDefaultLocation(ms.DefaultLocation)

	l, err := ledger.Open(c.Settings.Reports.LedgerPath, c.Log)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("path", c.Settings.Reports.LedgerPath).
			Build()
	}

	w := c.Writer()
	deps := &migration.Deps{
		Source:    legacy.NewSource(datastore.NewReader(c.source.DB())),
		Writer:    w,
		Guard:     migration.NewGuard(w),
		Resolver:  migration.NewResolver(w, ref, c.Log),
		Ledger:    l,
		Reference: ref,
		Log:       c.Log,
		Location:  loc,
		BatchSize: ms.BatchSize,
		TieBreak:  ms.TieBreak,
		SessionEvents: migration.SessionEvents{
			Started:  ms.SessionEvents.Started,
			Finished: ms.SessionEvents.Finished,
		},
	}
	if c.Metrics != nil {
		deps.Metrics = c.Metrics.Migration
	}
	deps.Audit = migration.NewAuditWriter(w, deps.Metrics, c.Log)
	if ms.BatchRate > 0 {
		deps.Limiter = rate.NewLimiter(rate.Limit(ms.BatchRate), 1)
	}
	return deps, nil
}

// Reporter creates the reconciliation reporter over steps.
func (c *Context) Reporter(steps []migration.Step) *reconcile.Reporter {
	return reconcile.New(&reconcile.Config{
		Steps:      steps,
		Writer:     c.Writer(),
		LedgerPath: c.Settings.Reports.LedgerPath,
		MetricsLog: c.Settings.Reports.MetricsLog,
		Log:        c.Log,
	})
}

// WriteMetrics exports the metrics textfile when one is configured.
func (c *Context) WriteMetrics() error {
	path := c.Settings.Reports.MetricsTextfile
	if path == "" || c.Metrics == nil {
		return nil
	}
	return c.Metrics.WriteTextfile(path)
}

// Close releases the database connections and the log file.
func (c *Context) Close() error {
	var errs []error
	if c.destination != nil {
		errs = append(errs, c.destination.Close())
	}
	if c.source != nil {
		errs = append(errs, c.source.Close())
	}
	if c.Log != nil {
		errs = append(errs, c.Log.Flush())
	}
	if c.closeLog != nil {
		errs = append(errs, c.closeLog())
	}
	return errors.Join(errs...)
}
