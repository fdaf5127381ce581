package session

import (
	"context"

	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// LoginRequiredMessage is surfaced when a guarded action runs without a
// session.
const LoginRequiredMessage = "You must login to edit or delete items"

// Prompter stages the re-login prompt in the UI: an error notice plus an
// open auth modal.
type Prompter interface {
	PromptLogin(ctx context.Context, sid, message string) error
}

// Gate guards mutating actions behind an authenticated session. It never
// calls the upstream API.
type Gate struct {
	store    *Store
	prompter Prompter
	logger   *logging.Logger
}

// NewGate creates an auth gate.
func NewGate(store *Store, prompter Prompter, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{store: store, prompter: prompter, logger: logger}
}

// Require returns the session when it is authenticated. Otherwise it
// stages the login prompt and returns nil.
func (g *Gate) Require(ctx context.Context, sid string) *Session {
	sess, err := g.store.Get(ctx, sid)
	if err != nil {
		g.logger.Error("session lookup failed", "error", err)
		sess = &Session{}
	}
	if sess.Authenticated() {
		return sess
	}
	if g.prompter != nil {
		if err := g.prompter.PromptLogin(ctx, sid, LoginRequiredMessage); err != nil {
			g.logger.Error("failed to stage login prompt", "error", err)
		}
	}
	return nil
}
