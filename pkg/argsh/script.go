// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"bytes"
	"context"
	"strings"
)

// Script feeds the given lines to a fresh interactive loop over the shell's
// namespace and returns everything it printed. It exists for tests and for
// scripting a shell non-interactively; the loop behaves exactly as it would
// on a pipe, including the implicit exit at end of input.
func (s *Shell) Script(ctx context.Context, lines ...string) (string, error) {
	var out bytes.Buffer
	session := *s.interactive
	session.stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	session.stdout = &out
	session.stderr = &out
	session.terminal = nil
	err := session.Run(ctx)
	return out.String(), err
}
