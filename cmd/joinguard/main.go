// Command joinguard compiles and runs join-validation checks for declared
// join chains.
//
// The CLI supports:
//   - explain: compile a chain file and print every validation statement
//   - check: run validate-then-execute against a live database
//   - version: print the build version
//
// explain works entirely offline; check needs --db, a config file, or
// DATABASE_URL.
package main

func main() {
	Execute()
}
