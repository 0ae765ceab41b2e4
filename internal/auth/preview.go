package auth

// PreviewPolicy is the allow-list of accounts permitted to preview the
// platform as another role.
//
// It is deliberately decoupled from the role/permission tables: preview
// capability can never be acquired by obtaining a powerful role, only by
// an explicit per-account grant in configuration.
type PreviewPolicy struct {
	emails map[string]struct{}
	ids    map[string]struct{}
}

// NewPreviewPolicy builds a policy from allow-listed account emails
// (case-insensitive) and account IDs.
func NewPreviewPolicy(emails, ids []string) *PreviewPolicy {
	p := &PreviewPolicy{
		emails: make(map[string]struct{}, len(emails)),
		ids:    make(map[string]struct{}, len(ids)),
	}
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			p.emails[e] = struct{}{}
		}
	}
	for _, id := range ids {
		if id != "" {
			p.ids[id] = struct{}{}
		}
	}
	return p
}

// CanPreviewRole reports whether the account is allow-listed for role
// preview. A nil policy allows no one.
func (p *PreviewPolicy) CanPreviewRole(acct *Account) bool {
	if p == nil || acct == nil {
		return false
	}
	if _, ok := p.emails[NormalizeEmail(acct.Email)]; ok {
		return true
	}
	_, ok := p.ids[acct.ID]
	return ok
}
