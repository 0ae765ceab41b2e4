package api

import "net/http"

// Gate-protected resource endpoints. Bookings, referrals, and listings are
// served by their own platform services; Atlas Core fronts them with the
// authorisation gate and reports the granted access, so those services can
// trust the decision without re-implementing it.

// accessResponse describes a granted access for a gated resource route.
type accessResponse struct {
	Email         string `json:"email"`
	Permission    string `json:"permission"`
	EffectiveRole string `json:"effective_role,omitempty"`
}

// handleResourceAccess reports the gate decision that admitted the caller.
// Routes using it sit behind requirePermission, so reaching the handler
// means access was granted.
func (s *Server) handleResourceAccess(permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		decision, ok := DecisionFromContext(r.Context())
		if !ok || decision.Session == nil {
			writeInternalError(w, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, accessResponse{
			Email:         decision.Session.Email,
			Permission:    permission,
			EffectiveRole: string(decision.EffectiveRole),
		})
	}
}
