package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gridline-labs/gridline/pkg/grid"
)

// CallerHeader carries the caller identity. Identity management is a
// collaborator's concern; the server only threads the value through.
const CallerHeader = "X-Gridline-Caller"

// Authorizer is the ownership precondition consulted before any
// engine call. On failure the engine is never reached.
type Authorizer interface {
	Authorize(ctx context.Context, caller, resourceID string) error
}

// AllowAll admits every caller. It is the default when no
// authorization collaborator is wired in.
type AllowAll struct{}

// Authorize implements Authorizer.
func (AllowAll) Authorize(context.Context, string, string) error {
	return nil
}

// authorize runs the precondition for a request scoped to resourceID.
func (s *Server) authorize(r *http.Request, resourceID string) error {
	caller := r.Header.Get(CallerHeader)
	if err := s.auth.Authorize(r.Context(), caller, resourceID); err != nil {
		return fmt.Errorf("%w: %v", grid.ErrForbidden, err)
	}
	return nil
}
