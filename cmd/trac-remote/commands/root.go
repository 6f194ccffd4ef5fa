package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/weaverba137/trac-remote/lib/configutil"
	"github.com/weaverba137/trac-remote/lib/restyutil"
	"github.com/weaverba137/trac-remote/lib/scrapers/trac"
	"github.com/weaverba137/trac-remote/lib/telemetry"

	"github.com/spf13/cobra"
)

// Config mirrors the persistent flags; a trac.json5 next to the cwd
// provides defaults and flags override it.
type Config struct {
	Url      string `json:"url"`
	Passfile string `json:"passfile"`
	Realm    string `json:"realm"`
	Debug    bool   `json:"debug"`
}

var flagUrl string
var flagPassfile string
var flagRealm string
var flagDebug bool

var rootCmd = &cobra.Command{
	Use:           "trac-remote [URL]",
	Short:         "trac-remote administers a Trac wiki over its HTML interface.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUrl, "url", "", "Base URL of the Trac server.")
	rootCmd.PersistentFlags().StringVarP(&flagPassfile, "passfile", "p", "", "File with username on line 1 and password on line 2; defaults to ~/.netrc lookup.")
	rootCmd.PersistentFlags().StringVarP(&flagRealm, "realm", "r", "", "HTTP Basic/Digest authentication realm, for Trac instances behind front-end auth.")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Print debug logs and dump HTTP exchanges to .trac-remote/http.")
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("trac.json5")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: could not read trac.json5:", err)
	}
	if flagUrl != "" {
		cfg.Url = flagUrl
	}
	if flagPassfile != "" {
		cfg.Passfile = flagPassfile
	}
	if flagRealm != "" {
		cfg.Realm = flagRealm
	}
	if flagDebug {
		cfg.Debug = true
	}
	return cfg
}

// newClient builds a logged-in client from the merged config.
func newClient(ctx context.Context) (*trac.Client, error) {
	cfg := loadConfig()
	telemetry.InitSlog(cfg.Debug)
	if cfg.Debug {
		out, err := restyutil.NewFilesystemOutput(".trac-remote/http")
		if err != nil {
			return nil, err
		}
		trac.SetRestyInstrumentOutput(out)
	}

	client, err := trac.NewClient(ctx, trac.ClientOptions{
		BaseUrl:  cfg.Url,
		Passfile: cfg.Passfile,
		Realm:    cfg.Realm,
	})
	if err != nil {
		return nil, err
	}
	err = client.Login(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// hoistUrlArg rewrites the classic invocation shape
// `trac-remote <URL> wiki list` into the flag form cobra expects.
func hoistUrlArg(args []string) []string {
	if len(args) > 0 && strings.Contains(args[0], "://") {
		return append([]string{"--url", args[0]}, args[1:]...)
	}
	return args
}

func ExecuteContext(ctx context.Context) {
	rootCmd.SetArgs(hoistUrlArg(os.Args[1:]))
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, trac.ErrCredentials) || os.IsNotExist(err) {
		os.Exit(2)
	}
	os.Exit(1)
}
