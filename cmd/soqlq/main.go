// Package main provides the entry point for the soqlq CLI.
//
// soqlq runs SOQL queries against an org through the REST API and renders
// the records as a table, CSV, JSON or Markdown.
//
// Usage:
//
//	soqlq query -q "SELECT Id, Name FROM Account"
//	soqlq query --file queries.soql -r csv -o accounts.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
