// tariffwatch suggests tariff classifications, queues low-confidence results
// for human review, and keeps a hash-chained audit trail of every outcome.
package main

import "github.com/ppiankov/tariffwatch/internal/cli"

func main() {
	cli.Execute()
}
