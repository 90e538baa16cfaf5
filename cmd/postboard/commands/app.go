package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-postboard"
)

// Environment variables read before flags are parsed.
const (
	EnvURL             = "POSTBOARD_URL"
	EnvTimeout         = "POSTBOARD_TIMEOUT"
	EnvUser            = "POSTBOARD_USER"
	EnvPassword        = "POSTBOARD_PASSWORD"
	EnvAssumeYes       = "POSTBOARD_ASSUME_YES"
	EnvLocalValidation = "POSTBOARD_LOCAL_VALIDATION"
)

// errReported marks a failure already shown to the user through a notice.
var errReported = errors.New("postboard: operation failed")

type app struct {
	opts     postboard.Options
	user     string
	password string
	json     bool
	debug    bool
	activity bool

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	components *postboard.Components
	presenter  *terminalPresenter
	forms      map[string]*postboard.Form
	inShell    bool
}

func newApp(in io.Reader, out, errOut io.Writer, getenv func(string) string) (*app, error) {
	a := &app{
		opts:   postboard.DefaultOptions(),
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		forms:  map[string]*postboard.Form{},
	}
	if err := a.applyEnv(getenv); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv(EnvURL); v != "" {
		a.opts.BaseURL = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		a.opts.Timeout = d
	}
	if v := getenv(EnvAssumeYes); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAssumeYes, err)
		}
		a.opts.AssumeYes = b
	}
	if v := getenv(EnvLocalValidation); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLocalValidation, err)
		}
		a.opts.LocalValidation = b
	}
	a.user = getenv(EnvUser)
	a.password = getenv(EnvPassword)
	return nil
}

// setup wires the client core once per process and restores the session.
func (a *app) setup(ctx context.Context, autoLogin bool) error {
	if a.components != nil {
		return nil
	}

	a.presenter = newTerminalPresenter(a.errOut)
	confirmer := &promptConfirmer{
		in:        a.in,
		out:       a.errOut,
		assumeYes: a.opts.GetAssumeYes(),
	}

	opts := []postboard.OrchestratorOption{
		postboard.WithPresenter(a.presenter),
		postboard.WithConfirmer(confirmer),
	}
	if a.activity {
		opts = append(opts, postboard.WithActivitySink(newActivityWriter(a.errOut)))
	}

	components, err := postboard.Setup(a.opts, a.loggerProvider(), opts...)
	if err != nil {
		return err
	}
	a.components = components

	a.orchestrator().Bootstrap(ctx)

	if autoLogin && a.user != "" && a.password != "" {
		if err := a.login(ctx, a.user, a.password); err != nil {
			return err
		}
	}
	return nil
}

// loggerProvider writes to the error stream. Only errors are shown unless
// --debug is set.
func (a *app) loggerProvider() postboard.LoggerProvider {
	level := glog.Error
	if a.debug {
		level = glog.Trace
	}
	logger := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("postboard"),
		glog.WithAddSource(false),
		glog.WithWriter(a.errOut),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)
	return glog.ProviderFromLogger(logger)
}

func (a *app) orchestrator() *postboard.Orchestrator {
	return a.components.Orchestrator
}

func (a *app) session() postboard.Session {
	return a.components.Sessions.Current()
}

func (a *app) form(name string) *postboard.Form {
	f, ok := a.forms[name]
	if !ok {
		f = postboard.NewForm(name)
		a.forms[name] = f
	}
	return f
}

// submit runs op through the named form. Failures were already reported as
// notices, so they collapse into errReported.
func (a *app) submit(ctx context.Context, name string, op func(ctx context.Context) error) error {
	outcome, err := a.form(name).Submit(ctx, op)
	if err == nil || errors.Is(err, postboard.ErrDeleteDeclined) {
		return nil
	}
	if outcome == "" {
		return err
	}
	return errReported
}

func (a *app) login(ctx context.Context, user, password string) error {
	creds := postboard.Credentials{Username: user, Password: password}
	return a.submit(ctx, postboard.OpLogin, func(ctx context.Context) error {
		_, err := a.orchestrator().Login(ctx, creds)
		return err
	})
}

// readSecret returns value or asks for it on the input stream.
func (a *app) readSecret(label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(a.errOut, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}
