// Command tutorctl signs in to a tutorsite server and keeps the session on disk.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tutorsite/internal/client"
	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/dto"
	"tutorsite/internal/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const usage = `usage: tutorctl <command> [flags]

commands:
  register   create an account
  login      sign in and store the session
  logout     forget the stored session
  whoami     show the signed-in user
`

// cli 命令执行环境
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func main() {
	logrus.SetOutput(os.Stderr)
	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	os.Exit(c.run(os.Args[1:]))
}

// commonFlags 每个子命令共享的参数
type commonFlags struct {
	server     string
	sessionDir string
}

func (f *commonFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.server, "server", envOr("TUTORSITE_SERVER", ""), "server base URL")
	fs.StringVar(&f.sessionDir, "session-dir", envOr("TUTORSITE_SESSION_DIR", ""), "directory holding session.json")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "register":
		err = c.register(args[1:])
	case "login":
		err = c.login(args[1:])
	case "logout":
		err = c.logout(args[1:])
	case "whoami":
		err = c.whoami(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return 0
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(c.stderr, "tutorctl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func (c *cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) register(args []string) error {
	fs := c.newFlagSet("register")
	var opts commonFlags
	opts.bind(fs)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	guest := fs.Bool("guest", false, "register as a guest account")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := c.passwordOr(*password)
	if err != nil {
		return err
	}

	var role *common.Role
	if *guest {
		r := common.RoleGuest
		role = &r
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	user, err := client.New(opts.server, nil).Register(ctx, *name, *email, pw, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "registered %s (id %d, role %s)\n", user.Email, user.ID, user.Role)
	return nil
}

func (c *cli) login(args []string) error {
	fs := c.newFlagSet("login")
	var opts commonFlags
	opts.bind(fs)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := session.NewFileStore(opts.sessionDir)
	if err != nil {
		return err
	}
	pw, err := c.passwordOr(*password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	api := client.New(opts.server, nil)
	user, err := api.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	if err := store.Save(&session.Session{Server: api.BaseURL(), User: user}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(c.stdout, "signed in as %s, session valid until %s\n", user.Email, user.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (c *cli) logout(args []string) error {
	fs := c.newFlagSet("logout")
	var opts commonFlags
	opts.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := session.NewFileStore(opts.sessionDir)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "signed out")
	return nil
}

func (c *cli) whoami(args []string) error {
	fs := c.newFlagSet("whoami")
	var opts commonFlags
	opts.bind(fs)
	offline := fs.Bool("offline", false, "print the stored session without contacting the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := session.NewFileStore(opts.sessionDir)
	if err != nil {
		return err
	}
	current, ok := store.Current()
	if !ok {
		return errors.New("not signed in")
	}
	if current.Expired(c.now()) {
		_ = store.Clear()
		return errors.New("session expired, sign in again")
	}
	if *offline {
		printUser(c.stdout, current.User.UserSummary)
		return nil
	}

	return c.refreshProfile(store, current, opts.server)
}

// refreshProfile 用服务端重新校验已保存的会话
func (c *cli) refreshProfile(store *session.FileStore, current *session.Session, server string) error {
	if server == "" {
		server = current.Server
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	profile, err := client.New(server, nil).Me(ctx, current.User.Token)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && (apiErr.Status == 401 || apiErr.Status == 403) {
			_ = store.Clear()
			return fmt.Errorf("session rejected by server: %w", err)
		}
		return err
	}

	updated := &session.Session{
		Server: current.Server,
		User: dto.SessionUser{
			UserSummary: profile,
			Token:       current.User.Token,
			ExpiresAt:   current.User.ExpiresAt,
		},
	}
	if err := store.Save(updated); err != nil {
		logrus.WithError(err).Warn("failed to refresh stored session")
	}
	printUser(c.stdout, profile)
	return nil
}

func printUser(w io.Writer, u dto.UserSummary) {
	fmt.Fprintf(w, "%s <%s>\nid: %d\nrole: %s\nactive: %t\n", u.Name, u.Email, u.ID, u.Role, u.Status == common.StatusActive)
}

// passwordOr 返回给定密码，为空时从终端或标准输入读取
func (c *cli) passwordOr(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.stderr, "Password: ")
		bs, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(bs), nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
