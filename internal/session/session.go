// Package session holds the per-session optimistic view of entities: the
// in-memory snapshot a UI reads while a mutation is in flight. It replaces the
// ambient module-level caches of the original front end with an explicit
// object handed to the usecases that need it.
package session

import (
	"lending-backoffice/internal/domain/lender"
	"lending-backoffice/internal/domain/prospect"
)

// ContextKey is where the identity middleware parks the request's session on
// the echo context.
const ContextKey = "backoffice.session"

type Session struct {
	UserID   string
	UserName string

	prospects map[string]*prospect.Prospect
	lenders   map[string]*lender.Lender
}

func New(userID, userName string) *Session {
	return &Session{
		UserID:    userID,
		UserName:  userName,
		prospects: make(map[string]*prospect.Prospect),
		lenders:   make(map[string]*lender.Lender),
	}
}

// Prospect returns the session's current view of a prospect, nil if unseen.
func (s *Session) Prospect(prospectID string) *prospect.Prospect {
	return s.prospects[prospectID]
}

// PutProspect replaces the view. Used for the speculative apply, the rollback
// restore, and the confirmed-from-backend replace alike; the caller decides
// which snapshot wins.
func (s *Session) PutProspect(p *prospect.Prospect) {
	s.prospects[p.ProspectID] = p
}

func (s *Session) Lender(lenderID string) *lender.Lender {
	return s.lenders[lenderID]
}

func (s *Session) PutLender(l *lender.Lender) {
	s.lenders[l.LenderID] = l
}

func (s *Session) DropProspect(prospectID string) {
	delete(s.prospects, prospectID)
}

func (s *Session) DropLender(lenderID string) {
	delete(s.lenders, lenderID)
}
