// Command lingua is a CLI client for the lingua-auth service.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcserver "github.com/and161185/lingua-auth/internal/server/grpc"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "lingua-auth")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lingua-auth")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

func clearToken() error {
	if err := os.Remove(tokenPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// tokenExpiry reads exp from a session token without verifying it.
func tokenExpiry(tok string, now time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return now.Add(24 * time.Hour)
}

// ---- grpc dial ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

type dialOpts struct {
	addr       string
	caPath     string
	skipVerify bool
	plaintext  bool
}

func dial(ctx context.Context, o dialOpts, bearer string) (*grpc.ClientConn, *grpcserver.AuthClient, error) {
	var creds credentials.TransportCredentials
	if o.plaintext {
		creds = insecure.NewCredentials()
	} else {
		c, err := loadTLS(o.caPath, o.skipVerify)
		if err != nil {
			return nil, nil, err
		}
		creds = c
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if bearer != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !o.plaintext}))
	}
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	cc, err := grpc.DialContext(ctx, o.addr, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cc, grpcserver.NewAuthClient(cc), nil
}

// withRequestID tags outgoing calls so server logs can be matched.
func withRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.Must(uuid.NewV4()).String()
	return metadata.AppendToOutgoingContext(ctx, grpcserver.RequestIDHeader, id), id
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `lingua CLI
Usage:
  lingua -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
%s`, commandHelp())
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands and stores the session token between runs.
func main() {
	// global flags
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	skipVerify := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (local server)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	name := flag.Arg(0)
	if name == "version" {
		fmt.Printf("lingua %s (%s)\n", version, buildDate)
		return
	}
	cmd, ok := lookupCommand(name)
	if !ok {
		usage()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var bearer string
	if cmd.auth {
		tok, err := loadToken()
		if err != nil {
			fail(err, "")
		}
		bearer = tok
	}

	cc, cli, err := dial(ctx, dialOpts{addr: *addr, caPath: *caPath, skipVerify: *skipVerify, plaintext: *plaintext}, bearer)
	if err != nil {
		fail(err, "")
	}
	defer cc.Close()

	ctx, reqID := withRequestID(ctx)
	out, err := cmd.run(ctx, cli, flag.Args()[1:])
	if err != nil {
		fail(err, reqID)
	}
	if err := afterRun(name, out, time.Now()); err != nil {
		fail(err, reqID)
	}
	printJSON(out)
}

// afterRun persists or drops the session token depending on the command outcome.
func afterRun(name string, out any, now time.Time) error {
	if name == "logout" {
		return clearToken()
	}
	if sess, ok := out.(*grpcserver.SessionResponse); ok && sess.AccessToken != "" {
		return saveToken(sess.AccessToken, tokenExpiry(sess.AccessToken, now))
	}
	return nil
}

// ---- helpers ----

func describe(err error, reqID string) string {
	if s, ok := status.FromError(err); ok {
		msg := fmt.Sprintf("rpc error: code=%s msg=%s", s.Code(), s.Message())
		if reqID != "" {
			msg += " request_id=" + reqID
		}
		return msg
	}
	return err.Error()
}

func fail(err error, reqID string) {
	fmt.Fprintln(os.Stderr, describe(err, reqID))
	os.Exit(1)
}
