package trac

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bgentry/go-netrc/netrc"
)

type Credentials struct {
	Username string
	Password string
}

// ReadPasswordFile reads a two-line password file: username on the
// first line, password on the second.
func ReadPasswordFile(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, err
	}
	if len(lines) < 2 || lines[1] == "" {
		return Credentials{}, fmt.Errorf("%w: password file %q needs a username line and a password line", ErrCredentials, path)
	}
	return Credentials{Username: lines[0], Password: lines[1]}, nil
}

// readNetrc looks the host up in ~/.netrc, keyed by host:port first
// and bare hostname second.
func readNetrc(base *url.URL) (Credentials, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Credentials{}, err
	}
	rc, err := netrc.ParseFile(filepath.Join(home, ".netrc"))
	if err != nil {
		return Credentials{}, err
	}

	machine := rc.FindMachine(base.Host)
	if machine == nil && base.Port() != "" {
		machine = rc.FindMachine(base.Hostname())
	}
	if machine == nil || machine.Password == "" {
		return Credentials{}, fmt.Errorf("%w: no netrc entry for %s", ErrCredentials, base.Host)
	}
	return Credentials{Username: machine.Login, Password: machine.Password}, nil
}

func resolveCredentials(base *url.URL, opts ClientOptions) (Credentials, error) {
	if opts.Username != "" && opts.Password != "" {
		return Credentials{Username: opts.Username, Password: opts.Password}, nil
	}
	if opts.Passfile != "" {
		return ReadPasswordFile(opts.Passfile)
	}
	creds, err := readNetrc(base)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("%w: no password file given and no ~/.netrc", ErrCredentials)
		}
		return Credentials{}, err
	}
	return creds, nil
}
