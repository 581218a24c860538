// orgctl manages organizations, members and invitations from the command line.
package main

import (
	"os"

	"orgmembership/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
