// Package shell implements the interactive command loop: a main menu for
// registration and login, a user menu for repositories and a repo menu
// for documents, check-ins and review.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sanity-io/litter"

	"github.com/nainya/docvcs/internal/logger"
	"github.com/nainya/docvcs/internal/metrics"
	"github.com/nainya/docvcs/pkg/registry"
	"github.com/nainya/docvcs/pkg/result"
	"github.com/nainya/docvcs/pkg/user"
)

const (
	contentPrompt = "Enter the file content and press q to quit: "
	approvePrompt = "Approve changes? Press y to accept: "
	contentEnd    = "q"
)

// Options configures a Shell
type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Debug   bool // dump reviewed check-ins at debug level
}

// Shell drives a registry from line-oriented input
type Shell struct {
	reg     *registry.Registry
	in      *bufio.Reader
	out     io.Writer
	log     *logger.Logger
	metrics *metrics.Metrics
	debug   bool
	eof     bool
	err     error // first input failure other than end of input
}

// New creates a shell reading commands from in and writing results to out
func New(reg *registry.Registry, in io.Reader, out io.Writer, opts Options) *Shell {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Shell{
		reg:     reg,
		in:      bufio.NewReader(in),
		out:     out,
		log:     log.ShellLogger("interactive"),
		metrics: opts.Metrics,
		debug:   opts.Debug,
	}
}

// Run processes commands until the user quits or input ends. A panic in
// a command or a failing reader is reported as INTERNAL_ERROR and
// returned as an error.
func (s *Shell) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.println(result.InternalError)
			s.log.Error("Command failed").Interface("panic", r).Send()
			err = fmt.Errorf("shell: %v", r)
		}
		s.println("Quitting the simulation.")
	}()

	s.mainMenu()
	if s.err != nil {
		return fmt.Errorf("shell: read input: %w", s.err)
	}
	return nil
}

func (s *Shell) println(a ...interface{}) {
	fmt.Fprintln(s.out, a...)
}

// readLine returns the next input line without its terminator. Lines
// have no length limit. ok is false once input is exhausted or failed.
func (s *Shell) readLine() (string, bool) {
	if s.eof {
		return "", false
	}

	line, err := s.in.ReadString('\n')
	if err != nil {
		s.eof = true
		if !errors.Is(err, io.EOF) {
			s.err = err
			s.log.Error("Reading input failed").Err(err).Send()
			return "", false
		}
		if line == "" {
			return "", false
		}
	}
	return strings.TrimRight(line, "\r\n"), true
}

// prompt prints p and reads one command line; ok is false at end of input
func (s *Shell) prompt(p string) ([]string, bool) {
	fmt.Fprint(s.out, p)
	line, ok := s.readLine()
	if !ok {
		if s.err != nil {
			s.println(result.InternalError)
		}
		return nil, false
	}
	return splitInput(line), true
}

// readContent reads lines until a lone "q", keeping a newline after each.
// ok is false when the input failed part way; end of input keeps what
// was read.
func (s *Shell) readContent() (string, bool) {
	s.println(contentPrompt)

	var b strings.Builder
	for {
		line, ok := s.readLine()
		if !ok {
			return b.String(), s.err == nil
		}
		if line == contentEnd {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// arity reports whether words has exactly n elements, printing
// UNKNOWN_COMMAND otherwise
func (s *Shell) arity(words []string, n int) bool {
	if len(words) != n {
		s.println(result.UnknownCommand)
		return false
	}
	return true
}

func (s *Shell) record(menu string, c command) {
	s.metrics.RecordCommand(menu, string(c))
	s.log.Debug("Command").Str("menu", menu).Str("command", string(c)).Send()
}

func (s *Shell) mainMenu() {
	for !s.eof {
		words, ok := s.prompt("[anon@root]: ")
		if !ok {
			return
		}

		c := parseCommand(words[0])
		s.record("main", c)

		switch c {
		case cmdAddUser:
			if s.arity(words, 2) {
				s.println(s.addUser(strings.TrimSpace(words[1])))
			}
		case cmdDelUser:
			if s.arity(words, 2) {
				s.println(s.reg.DelUser(strings.TrimSpace(words[1])))
			}
		case cmdLogin:
			if s.arity(words, 2) {
				s.login(strings.TrimSpace(words[1]))
			}
		case cmdHelp:
			if s.arity(words, 1) {
				fmt.Fprint(s.out, mainMenuHelp)
			}
		case cmdQuit:
			if s.arity(words, 1) {
				return
			}
		default:
			s.println(result.UnknownCommand)
		}
	}
}

func (s *Shell) addUser(name string) result.Code {
	_, code, err := s.reg.AddUser(name)
	if err != nil {
		s.log.Warn("Rejected user name").Err(err).Send()
		return result.UnknownCommand
	}
	return code
}

func (s *Shell) login(name string) {
	u, ok := s.reg.FindUser(name)
	if !ok {
		s.println(result.UserNotFound)
		return
	}

	s.println(result.Success)
	s.userMenu(u)
	s.println(result.Success)
}

func (s *Shell) userMenu(u *user.User) {
	p := fmt.Sprintf("[%s@root]: ", u.Name())

	for !s.eof {
		words, ok := s.prompt(p)
		if !ok {
			return
		}

		c := parseCommand(words[0])
		s.record("user", c)

		switch c {
		case cmdAddRepo:
			if s.arity(words, 2) {
				s.println(s.addRepo(strings.TrimSpace(words[1]), u))
			}
		case cmdDelRepo:
			if s.arity(words, 2) {
				s.println(s.reg.DelRepo(strings.TrimSpace(words[1]), u))
			}
		case cmdListRepos:
			if s.arity(words, 1) {
				s.println(u.String())
			}
		case cmdOpenRepo:
			if s.arity(words, 2) {
				s.openRepo(u, strings.TrimSpace(words[1]))
			}
		case cmdLogout:
			if s.arity(words, 1) {
				return
			}
		case cmdHelp:
			if s.arity(words, 1) {
				fmt.Fprint(s.out, userMenuHelp)
			}
		default:
			s.println(result.UnknownCommand)
		}
	}
}

func (s *Shell) addRepo(name string, admin *user.User) result.Code {
	_, code, err := s.reg.AddRepo(name, admin)
	if err != nil {
		s.log.Warn("Rejected repo name").Err(err).Send()
		return result.UnknownCommand
	}
	return code
}

func (s *Shell) openRepo(u *user.User, repoName string) {
	code := u.Open(repoName)
	s.println(code)
	if !code.OK() {
		return
	}

	s.repoMenu(u, repoName)
	s.println(result.Success)
}

func (s *Shell) repoMenu(u *user.User, repoName string) {
	p := fmt.Sprintf("[%s@%s]: ", u.Name(), repoName)

	for !s.eof {
		words, ok := s.prompt(p)
		if !ok {
			return
		}

		c := parseCommand(words[0])
		s.record("repo", c)

		switch c {
		case cmdSubscribe:
			if s.arity(words, 2) {
				s.println(s.reg.Subscribe(repoName, u, strings.TrimSpace(words[1])))
			}
		case cmdListDocs:
			if s.arity(words, 1) {
				s.listDocs(u, repoName)
			}
		case cmdEditDoc:
			if s.arity(words, 2) {
				s.println(s.editDoc(u, repoName, strings.TrimSpace(words[1])))
			}
		case cmdAddDoc:
			if s.arity(words, 2) {
				s.println(s.addDoc(u, repoName, strings.TrimSpace(words[1])))
			}
		case cmdDelDoc:
			if s.arity(words, 2) {
				s.println(u.DeleteDoc(repoName, strings.TrimSpace(words[1])))
			}
		case cmdViewDoc:
			if s.arity(words, 2) {
				doc, code := u.ViewDoc(repoName, strings.TrimSpace(words[1]))
				if code.OK() {
					s.println(doc)
				} else {
					s.println(code)
				}
			}
		case cmdCheckIn:
			if s.arity(words, 1) {
				s.println(u.CheckIn(repoName))
			}
		case cmdCheckOut:
			if s.arity(words, 1) {
				s.println(u.CheckOut(repoName))
			}
		case cmdReview:
			if s.arity(words, 1) {
				s.review(u, repoName)
			}
		case cmdHistory:
			if s.arity(words, 1) {
				s.history(repoName)
			}
		case cmdRevert:
			if s.arity(words, 1) {
				s.revert(u, repoName)
			}
		case cmdHelp:
			if s.arity(words, 1) {
				fmt.Fprint(s.out, repoMenuHelp)
			}
		case cmdQuit:
			if s.arity(words, 1) {
				return
			}
		default:
			s.println(result.UnknownCommand)
		}
	}
}

func (s *Shell) listDocs(u *user.User, repoName string) {
	wc, ok := u.WorkingCopy(repoName)
	if !ok {
		s.println(result.RepoNotFound)
		return
	}
	s.println(wc.String())
}

func (s *Shell) addDoc(u *user.User, repoName, docName string) result.Code {
	if err := s.reg.ValidateName(docName); err != nil {
		s.log.Warn("Rejected document name").Err(err).Send()
		return result.UnknownCommand
	}
	if _, code := u.ViewDoc(repoName, docName); code != result.DocNotFound {
		if code.OK() {
			return result.DocNameAlreadyExists
		}
		return code
	}
	content, ok := s.readContent()
	if !ok {
		return result.InternalError
	}
	return u.AddDoc(repoName, docName, content)
}

func (s *Shell) editDoc(u *user.User, repoName, docName string) result.Code {
	if _, code := u.ViewDoc(repoName, docName); !code.OK() {
		return code
	}
	content, ok := s.readContent()
	if !ok {
		return result.InternalError
	}
	return u.EditDoc(repoName, docName, content)
}

func (s *Shell) review(u *user.User, repoName string) {
	rp, ok := s.reg.FindRepo(repoName)
	if !ok {
		s.println(result.RepoNotFound)
		return
	}

	cs, code, err := rp.NextCheckIn(u)
	if err != nil {
		s.log.Error("Review failed").Err(err).Send()
		s.println(result.InternalError)
		return
	}
	if !code.OK() {
		s.println(code)
		return
	}

	if s.debug {
		s.log.Debug("Reviewing check-in").
			Str("checkin", cs.ID.String()).
			Str("dump", litter.Options{HidePrivateFields: false}.Sdump(cs.Changes())).
			Send()
	}

	s.println(cs.String())
	fmt.Fprint(s.out, approvePrompt)
	answer, ok := s.readLine()
	if !ok {
		if s.err != nil {
			s.println(result.InternalError)
		}
		return
	}
	if strings.TrimSpace(answer) != "y" {
		s.log.Info("Check-in discarded").Str("checkin", cs.ID.String()).Str("repo", repoName).Send()
		return
	}

	code, err = rp.ApproveCheckIn(u, cs)
	if err != nil {
		s.log.Error("Approval failed").Err(err).Send()
		s.println(result.InternalError)
		return
	}
	s.println(code)
}

func (s *Shell) history(repoName string) {
	rp, ok := s.reg.FindRepo(repoName)
	if !ok {
		s.println(result.RepoNotFound)
		return
	}
	s.println(rp.VersionHistory().String())
}

func (s *Shell) revert(u *user.User, repoName string) {
	rp, ok := s.reg.FindRepo(repoName)
	if !ok {
		s.println(result.RepoNotFound)
		return
	}

	code, err := rp.Revert(u)
	if err != nil {
		s.log.Error("Revert failed").Err(err).Send()
		s.println(result.InternalError)
		return
	}
	s.println(code)
}
