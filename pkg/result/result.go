// ABOUTME: Business result codes returned across the version-control API
// ABOUTME: Codes are plain values callers branch on; they render as upper-case names

package result

// Code is the outcome of a user-facing operation
type Code int

const (
	Success Code = iota
	AccessDenied
	NoOlderVersion
	RepoNotFound
	RepoNameAlreadyExists
	UserNotFound
	UserNameAlreadyExists
	DocNotFound
	DocNameAlreadyExists
	NoPendingCheckIns
	UnknownCommand
	InternalError
)

var codeNames = [...]string{
	Success:               "SUCCESS",
	AccessDenied:          "ACCESS_DENIED",
	NoOlderVersion:        "NO_OLDER_VERSION",
	RepoNotFound:          "REPO_NOT_FOUND",
	RepoNameAlreadyExists: "REPONAME_ALREADY_EXISTS",
	UserNotFound:          "USER_NOT_FOUND",
	UserNameAlreadyExists: "USERNAME_ALREADY_EXISTS",
	DocNotFound:           "DOC_NOT_FOUND",
	DocNameAlreadyExists:  "DOCNAME_ALREADY_EXISTS",
	NoPendingCheckIns:     "NO_PENDING_CHECKINS",
	UnknownCommand:        "UNKNOWN_COMMAND",
	InternalError:         "INTERNAL_ERROR",
}

func (c Code) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "INTERNAL_ERROR"
	}
	return codeNames[c]
}

// OK reports whether the code is Success
func (c Code) OK() bool {
	return c == Success
}
