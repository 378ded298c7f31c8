package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/mysh/core"
	"github.com/josephlewis42/mysh/core/config"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/ttylog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// osFs is swapped out in tests.
var osFs = afero.NewOsFs()

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.LoadFromEnv(osFs)

	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Couldn't load config: check %s", config.EnvConfig)
	}

	return configuration, err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mysh [batchFile]",
	Short: "A minimal Unix shell",
	Long: `mysh reads commands from the terminal, or from batchFile if one is
given, and runs each as a child process. Commands must be given by path.`,
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		args = trimTerminator(args)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stdin := cmd.InOrStdin()
		session, err := core.ResolveSession(osFs, append([]string{"mysh"}, args...), readCloser(stdin))
		if err != nil {
			return err
		}

		opts := core.Options{
			Config:     cfg,
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
			ChildStdin: stdin,
			Fs:         osFs,
			Terminal:   isTerminal(stdin) && isTerminal(cmd.OutOrStdout()),
		}

		var logs []io.Closer
		defer func() {
			for _, fd := range logs {
				fd.Close()
			}
		}()

		if cfg.SessionLog != "" {
			fd, err := cfg.OpenSessionLog()
			if err != nil {
				session.Close()
				return fmt.Errorf("open session log: %w", err)
			}
			logs = append(logs, fd)
			opts.Events = logger.NewJSONLinesLogRecorder(fd).NewSession()
		}

		if cfg.TTYLog != "" {
			fd, err := cfg.CreateTTYLog()
			if err != nil {
				session.Close()
				return fmt.Errorf("create tty log: %w", err)
			}
			logs = append(logs, fd)
			opts.Recording = ttylog.NewAsciicastLogSink(fd)
		}

		sh, err := core.NewShell(session, opts)
		if err != nil {
			session.Close()
			return err
		}

		if err := sh.Run(); err != nil {
			sh.Close()
			return err
		}

		return sh.Close()
	},
}

func readCloser(r io.Reader) io.ReadCloser {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

func isTerminal(stream interface{}) bool {
	fd, ok := stream.(*os.File)
	return ok && readline.IsTerminal(int(fd.Fd()))
}

// argsTerminator is put in front of the program arguments so cobra never
// matches a batch file name against one of its hidden commands.
const argsTerminator = "--"

func trimTerminator(args []string) []string {
	if len(args) > 0 && args[0] == argsTerminator {
		return args[1:]
	}
	return args
}

func execute(args []string) error {
	rootCmd.SetArgs(append([]string{argsTerminator}, args...))
	return rootCmd.Execute()
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(execute(os.Args[1:]))
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
