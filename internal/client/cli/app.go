package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/ecoflow/internal/client/client"
	"github.com/dmitrijs2005/ecoflow/internal/client/config"
	"github.com/dmitrijs2005/ecoflow/internal/client/controllers"
	"github.com/dmitrijs2005/ecoflow/internal/client/debounce"
	"github.com/dmitrijs2005/ecoflow/internal/client/export"
	"github.com/dmitrijs2005/ecoflow/internal/client/session"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	api     client.Client
	session *session.Store
	list    *controllers.ListController
	detail  *controllers.DetailController
	files   *controllers.AttachmentGateway
	admin   *controllers.AdminController
	sink    export.Sink

	reader *bufio.Reader
	out    io.Writer

	// set by the session store when the server ends the session
	expired atomic.Bool
	// username the per-user state (selection, user listing) belongs to
	owner string
}

// NewApp opens the session database, builds the API client and the
// controllers, and restores a persisted session if there is one.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api, err := client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sinks := export.Multi{export.FileSink{Dir: c.DownloadDir}}
	if c.Export.Enabled() {
		s3sink, err := export.NewS3Sink(ctx, export.S3Config{
			Bucket:    c.Export.Bucket,
			Region:    c.Export.Region,
			Prefix:    c.Export.Prefix,
			Endpoint:  c.Export.Endpoint,
			AccessKey: c.Export.AccessKey,
			SecretKey: c.Export.SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		sinks = append(sinks, s3sink)
	}

	a := buildApp(c, api, db, sinks, logger, bufio.NewReader(os.Stdin), os.Stdout)

	if sess, ok, err := a.session.Restore(ctx); err != nil {
		logger.Warn(ctx, "session restore failed", "error", err)
	} else if ok {
		a.owner = sess.Username
		logger.Info(ctx, "session restored", "username", sess.Username)
	}
	return a, nil
}

// buildApp wires the object graph. The HTTP client and the session store
// reference each other, so credentials are attached after both exist.
func buildApp(c *config.Config, api *client.HTTPClient, db *sql.DB, sink export.Sink, logger logging.Logger, reader *bufio.Reader, out io.Writer) *App {
	opts := []session.Option{session.WithLogger(logger)}
	if db != nil {
		opts = append(opts, session.WithDB(db))
	}
	store := session.NewStore(api, opts...)
	api.UseCredentials(store)

	a := &App{
		config:  c,
		logger:  logger,
		db:      db,
		api:     api,
		session: store,
		sink:    sink,
		reader:  reader,
		out:     out,
	}

	a.list = controllers.NewListController(api,
		controllers.WithPageSize(c.PageSize),
		controllers.WithDebouncer(debounce.New(c.SearchDebounce)),
		controllers.WithListLogger(logger),
	)
	a.detail = controllers.NewDetailController(api, store, logger)
	a.files = controllers.NewAttachmentGateway(api, logger)
	a.admin = controllers.NewAdminController(api, store, logger)

	store.OnInvalidated(func() { a.expired.Store(true) })
	return a
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "ECO client (type 'help' for commands)")
	if err := a.Ping(ctx); err != nil {
		fmt.Fprintln(a.out, "Warning:", err)
	}
	if !a.isLoggedIn() {
		a.report(a.Login(ctx))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	a.list.Wait()
	if a.db != nil {
		_ = a.db.Close()
	}
}

// resetUserState drops what the previous identity selected or listed.
func (a *App) resetUserState() {
	a.detail.Clear()
	a.admin.Reset()
	a.owner = ""
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().Authenticated()
}

func (a *App) isAdmin() bool {
	return a.session.Current().IsAdmin
}

// sessionExpired reports, once, that the server ended the session.
func (a *App) sessionExpired() bool {
	return a.expired.Swap(false)
}

func (a *App) getStatus() string {
	sess := a.session.Current()
	if !sess.Authenticated() {
		return ""
	}
	s := sess.Username
	if sess.IsAdmin {
		s += " admin"
	}
	if id, ok := a.detail.Selected(); ok {
		s += fmt.Sprintf(" #%d", id)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) report(err error) {
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
}
