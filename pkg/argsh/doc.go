// SPDX-License-Identifier: MPL-2.0

// Package argsh turns an arbitrary object's public members into two user
// interfaces kept in sync from one introspected command table: a single-shot
// command-line interface and a persistent interactive shell.
//
// Scanning discovers eligible members through reflection (methods, func
// fields, shell-tagged accessor fields), derives dashed command names, and
// produces an UnboundNamespace; binding it to a live object yields the
// Namespace both interface builders consume. The usual entry point wraps all
// of that:
//
//	type Driver struct{}
//
//	func (Driver) Add(a, b int) int { return a + b }
//
//	func main() {
//		sh, err := argsh.New("mycli", &Driver{}, argsh.WithIntro("Welcome!"))
//		if err != nil {
//			log.Fatal(err)
//		}
//		sh.Main()
//	}
//
// Running "mycli add 1 5" prints 6 and exits; running "mycli" with no
// matching subcommand enters the interactive loop, where the same commands
// accept literal arguments such as "add 1 5" or "configure [1, 2] depth=3".
package argsh
