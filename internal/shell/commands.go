package shell

import "strings"

type command string

const (
	cmdAddUser   command = "au"
	cmdDelUser   command = "du"
	cmdLogin     command = "li"
	cmdQuit      command = "qu"
	cmdAddRepo   command = "ar"
	cmdDelRepo   command = "dr"
	cmdOpenRepo  command = "or"
	cmdListRepos command = "lr"
	cmdLogout    command = "lo"
	cmdSubscribe command = "su"
	cmdCheckOut  command = "co"
	cmdCheckIn   command = "ci"
	cmdReview    command = "rc"
	cmdHistory   command = "vh"
	cmdRevert    command = "re"
	cmdListDocs  command = "ld"
	cmdAddDoc    command = "ad"
	cmdEditDoc   command = "ed"
	cmdDelDoc    command = "dd"
	cmdViewDoc   command = "vd"
	cmdHelp      command = "he"
	cmdUnknown   command = "un"
)

var knownCommands = map[command]bool{
	cmdAddUser: true, cmdDelUser: true, cmdLogin: true, cmdQuit: true,
	cmdAddRepo: true, cmdDelRepo: true, cmdOpenRepo: true, cmdListRepos: true,
	cmdLogout: true, cmdSubscribe: true, cmdCheckOut: true, cmdCheckIn: true,
	cmdReview: true, cmdHistory: true, cmdRevert: true, cmdListDocs: true,
	cmdAddDoc: true, cmdEditDoc: true, cmdDelDoc: true, cmdViewDoc: true,
	cmdHelp: true,
}

func parseCommand(word string) command {
	c := command(strings.ToLower(strings.TrimSpace(word)))
	if knownCommands[c] {
		return c
	}
	return cmdUnknown
}

// splitInput breaks a line into the command and at most one argument
func splitInput(line string) []string {
	return strings.SplitN(strings.TrimSpace(line), " ", 2)
}

const mainMenuHelp = "\t Main Menu Help \n" +
	"====================================\n" +
	"au <username> : Registers as a new user \n" +
	"du <username> : De-registers a existing user \n" +
	"li <username> : To login \n" +
	"qu : To exit \n" +
	"====================================\n"

const userMenuHelp = "\t User Menu Help \n" +
	"====================================\n" +
	"ar <reponame> : To add a new repo \n" +
	"dr <reponame> : To delete a repo \n" +
	"or <reponame> : To open repo \n" +
	"lr : To list repo \n" +
	"lo : To logout \n" +
	"====================================\n"

const repoMenuHelp = "\t Repo Menu Help \n" +
	"====================================\n" +
	"su <username> : To subcribe users to repo \n" +
	"ci: To check in changes \n" +
	"co: To check out changes \n" +
	"rc: To review change \n" +
	"vh: To get revision history \n" +
	"re: To revert to previous version \n" +
	"ld : To list documents \n" +
	"ed <docname>: To edit doc \n" +
	"ad <docname>: To add doc \n" +
	"dd <docname>: To delete doc \n" +
	"vd <docname>: To view doc \n" +
	"qu : To quit \n" +
	"====================================\n"
