package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Decision is the discriminated outcome of a Gate authorisation pass.
// Authenticated is true only for a 200; Session is present whenever the
// token verified (200 and 403), so denials remain attributable.
type Decision struct {
	Authenticated bool     `json:"authenticated"`
	Status        int      `json:"status"`
	Reason        string   `json:"reason,omitempty"`
	Session       *Session `json:"session,omitempty"`

	// EffectiveRole is set only when an allow-listed account's preview
	// role was honoured for this request. It never persists anywhere.
	EffectiveRole Role `json:"effective_role,omitempty"`
}

// Refusal reasons surfaced in Decision.Reason. Permission names are not
// secret, so distinguishing "no session" from "insufficient permission"
// is safe; why a token failed is not distinguished (see TokenCodec.Verify).
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// Gate composes the token codec, permission evaluator, preview policy, and
// account store into a single per-request pass/fail decision. All state is
// immutable after construction; the only I/O is the account lookup made
// when an authorised preview is being considered.
type Gate struct {
	codec   *TokenCodec
	eval    *Evaluator
	preview *PreviewPolicy
	store   AccountStore
}

// NewGate wires the gate's collaborators. store may be nil only when
// preview is empty (no lookup will ever be needed).
func NewGate(codec *TokenCodec, eval *Evaluator, preview *PreviewPolicy, store AccountStore) *Gate {
	return &Gate{codec: codec, eval: eval, preview: preview, store: store}
}

// Authorize runs the gate state machine for one request: extract and verify
// the session cookie, resolve an optional preview role, and evaluate the
// required permission against the effective role set.
//
// A non-nil error means the account-store lookup failed mid-decision; the
// caller must treat it as an internal error (500), never as "no preview" —
// an infra failure must not silently degrade the decision.
func (g *Gate) Authorize(ctx context.Context, r *http.Request, perm Permission) (*Decision, error) {
	session, ok := g.sessionFromRequest(r)
	if !ok {
		return &Decision{Status: http.StatusUnauthorized, Reason: ReasonUnauthenticated}, nil
	}

	override, err := g.authorizedPreviewRole(ctx, r, session)
	if err != nil {
		return nil, err
	}

	if !g.eval.HasPermission(perm, session.Roles, override) {
		// Session rides along so callers can attribute the denial.
		return &Decision{Status: http.StatusForbidden, Reason: ReasonForbidden, Session: session}, nil
	}

	return &Decision{
		Authenticated: true,
		Status:        http.StatusOK,
		Session:       session,
		EffectiveRole: override,
	}, nil
}

// Authenticate extracts and verifies the session cookie without evaluating
// any permission. Used by routes that need identity but no capability
// (session introspection, logout, password change).
func (g *Gate) Authenticate(r *http.Request) (*Session, bool) {
	return g.sessionFromRequest(r)
}

// sessionFromRequest extracts and verifies the session cookie.
func (g *Gate) sessionFromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	session, err := g.codec.Verify(cookie.Value)
	if err != nil {
		return nil, false
	}
	return session, true
}

// authorizedPreviewRole resolves the preview-role cookie, if any, to an
// authorised override role.
//
// An unparseable role, a missing account, or an account outside the
// allow-list all fall through as "no override" — externally
// indistinguishable from the cookie being absent, so a prober cannot learn
// who is allow-listed. Store failures propagate.
func (g *Gate) authorizedPreviewRole(ctx context.Context, r *http.Request, session *Session) (Role, error) {
	cookie, err := r.Cookie(PreviewCookieName)
	if err != nil || cookie.Value == "" {
		return "", nil
	}

	role, ok := NormalizeRole(cookie.Value)
	if !ok {
		return "", nil
	}

	if g.store == nil {
		return "", nil
	}
	acct, err := g.store.GetByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolving account for preview check: %w", err)
	}

	if !acct.IsActive() || !g.preview.CanPreviewRole(acct) {
		return "", nil
	}
	return role, nil
}
