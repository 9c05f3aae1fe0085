package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/veza-labs/worksim/core"
	"github.com/veza-labs/worksim/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	db   *sqlx.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb          - create the application database and user if missing")
	fmt.Println("  migrate COMMAND   - run a migration command (up, down, status, ...)")
	fmt.Println("  seed              - load demo simulations, tasks and learners")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "createdb":
		return database.CreateIfNotExist(cli.conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if err := cli.openDB(); err != nil {
			return err
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := cli.openDB(); err != nil {
			return err
		}
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openDB() error {
	if cli.db != nil {
		return nil
	}
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	cli.db = db
	return nil
}

func (cli *commandLine) close() {
	if cli.db != nil {
		_ = cli.db.Close()
	}
}
