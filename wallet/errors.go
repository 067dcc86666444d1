/*
errors.go - Error types for the wallet engine

PURPOSE:
  Note what is NOT here: insufficient balance. SpendTime signals that with
  a boolean return, because a short wallet is an everyday outcome the
  caller must branch on, not a failure. Authority and persistence failures
  are logged and absorbed inside the engine (availability over strictness),
  so very little surfaces as an error at all.

USAGE:
  if errors.Is(err, wallet.ErrNoAuthority) { ... }

SEE ALSO:
  - engine.go: Fallback behavior when the authority fails
  - authority.go: The local no-op authority
*/
package wallet

import "errors"

// ErrNoAuthority is returned by authority methods on platforms without a
// native balance authority. Callers that checked Available() first never
// see it.
var ErrNoAuthority = errors.New("no native balance authority on this platform")
