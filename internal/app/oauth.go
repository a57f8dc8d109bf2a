package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/infrastructure/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// DriveAuthorizer walks an operator through the OAuth consent flow once and
// prints the refresh token a gdrive disk needs.
type DriveAuthorizer struct {
	config *oauth2.Config
	logger *logger.Logger
	state  string
	server *http.Server
	tokens chan *oauth2.Token
}

func NewDriveAuthorizer(log *logger.Logger, clientSecretPath, redirectURL string) (*DriveAuthorizer, error) {
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if clientSecretPath == "" {
		return nil, errors.New("client secret path cannot be empty")
	}

	b, err := os.ReadFile(clientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret: %w", err)
	}

	cfg, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}

	return newDriveAuthorizer(log, cfg), nil
}

func newDriveAuthorizer(log *logger.Logger, cfg *oauth2.Config) *DriveAuthorizer {
	return &DriveAuthorizer{
		config: cfg,
		logger: log,
		state:  uuid.NewString(),
		tokens: make(chan *oauth2.Token, 1),
	}
}

// ClientSecretFile returns the client_secret_file of a configured gdrive disk.
func ClientSecretFile(cfg *config.Config) (string, error) {
	found := false
	for _, disk := range cfg.Filesystems {
		if disk.Driver != "gdrive" {
			continue
		}
		found = true
		if disk.ClientSecretFile != "" {
			return disk.ClientSecretFile, nil
		}
	}
	if found {
		return "", errors.New("gdrive filesystem has no client_secret_file")
	}
	return "", errors.New("no gdrive filesystem configured")
}

func (a *DriveAuthorizer) AuthURL() string {
	return a.config.AuthCodeURL(a.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (a *DriveAuthorizer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/google/drive", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, a.AuthURL(), http.StatusTemporaryRedirect)
	})

	mux.HandleFunc("GET /auth/google/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != a.state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code parameter", http.StatusBadRequest)
			return
		}

		token, err := a.config.Exchange(r.Context(), code)
		if err != nil {
			a.logger.Errorf("Token exchange failed: %v", err)
			http.Error(w, fmt.Sprintf("token exchange failed: %v", err), http.StatusBadGateway)
			return
		}

		if token.RefreshToken == "" {
			a.logger.Warnf("Authorization finished without a refresh token")
			fmt.Fprintln(w, "No refresh token returned. Revoke app access and authorize again.")
			return
		}

		fmt.Fprintf(w, "Refresh token:\n%s\n\nSet it as refresh_token on your gdrive filesystem.\n", token.RefreshToken)

		select {
		case a.tokens <- token:
		default:
		}
	})

	return mux
}

// Authorize serves the consent flow on addr until a refresh token arrives
// or ctx is done.
func (a *DriveAuthorizer) Authorize(ctx context.Context, addr string) (string, error) {
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("Google Drive OAuth server listening on %s", addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer a.shutdown()

	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	a.logger.Infof("Open http://%s/auth/google/drive to authorize", host)

	select {
	case token := <-a.tokens:
		return token.RefreshToken, nil
	case err := <-errCh:
		return "", fmt.Errorf("oauth server: %w", err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *DriveAuthorizer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warnf("Failed to shutdown OAuth server: %v", err)
		return
	}
	a.logger.Infof("OAuth server stopped")
}
