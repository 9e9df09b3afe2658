package sieve

import (
	"os"

	"github.com/datazip-inc/sieve/protocol"
	_ "github.com/datazip-inc/sieve/source/jsonl"    // registering jsonl source
	_ "github.com/datazip-inc/sieve/source/mongodb"  // registering mongodb source
	_ "github.com/datazip-inc/sieve/source/mysql"    // registering mysql source
	_ "github.com/datazip-inc/sieve/source/parquet"  // registering parquet source
	_ "github.com/datazip-inc/sieve/source/postgres" // registering postgres source
	"github.com/datazip-inc/sieve/utils/logger"
	"github.com/datazip-inc/sieve/utils/safego"
)

// Run executes the sieve command line and exits the process.
func Run() {
	defer safego.Recovery(true)

	err := protocol.CreateRootCommand().Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
