package trac

import "errors"

var (
	// ErrConfiguration is returned before any network I/O when the
	// client is constructed without a base URL.
	ErrConfiguration = errors.New("trac: a Trac URL is required")
	// ErrCredentials is returned when neither the password file nor
	// the netrc store yields a username and password for the host.
	ErrCredentials = errors.New("trac: could not resolve credentials")
	// ErrAuthentication is returned when the login handshake finishes
	// without both a form token and a trac_auth cookie.
	ErrAuthentication = errors.New("trac: authentication failed")
)
