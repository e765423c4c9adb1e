// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	mstore "github.com/mendersoftware/go-lib-micro/store"

	dconfig "github.com/mendersoftware/operations/config"
	"github.com/mendersoftware/operations/store/mongo"
	"github.com/mendersoftware/operations/store/sqldb"
)

const (
	EnvPrefix = "OPERATIONS"
)

func main() {
	doMain(os.Args)
}

func doMain(args []string) {
	var configPath string

	app := cli.NewApp()
	app.Usage = "Operations Service"
	app.Version = CreateVersionString()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name: "config",
			Usage: "Configuration `FILE`." +
				" Supports JSON, TOML, YAML and HCL formatted configs.",
			Destination: &configPath,
		},
		cli.BoolFlag{
			Name:  "dev",
			Usage: "Use development setup",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "server",
			Usage:  "Run the service as a server",
			Action: cmdServer,
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "automigrate",
					Usage: "Run database migrations before starting.",
				},
			},
		},
		{
			Name:   "migrate",
			Usage:  "Run the migrations",
			Action: cmdMigrate,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "tenant",
					Usage: "Tenant ID (optional).",
				},
			},
		},
	}
	app.Action = cmdServer
	app.Before = func(args *cli.Context) error {
		return setupConfig(configPath)
	}

	err := app.Run(args)
	if err != nil {
		log.NewEmpty().Fatal(err)
	}
}

func setupConfig(configPath string) error {
	err := config.FromConfigFile(configPath, dconfig.Defaults)
	if err != nil {
		return cli.NewExitError(
			fmt.Sprintf("error loading configuration: %s", err),
			1)
	}

	// Enable setting config values by environment variables
	config.Config.SetEnvPrefix(EnvPrefix)
	config.Config.AutomaticEnv()
	config.Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := config.ValidateConfig(config.Config, dconfig.Validators...); err != nil {
		return cli.NewExitError(
			fmt.Sprintf("configuration error: %s", err),
			1)
	}

	log.Setup(config.Config.GetBool(dconfig.SettingDebugLog))
	return nil
}

func cmdServer(args *cli.Context) error {
	devSetup := args.GlobalBool("dev")

	l := log.New(log.Ctx{})

	if devSetup {
		l.Infof("setting up development configuration")
		config.Config.Set(dconfig.SettingMiddleware, dconfig.EnvDev)
	}

	l.Print("Operations Service starting up")

	err := RunServer(context.Background(), config.Config, args.Bool("automigrate"))
	if err != nil {
		return cli.NewExitError(err.Error(), 4)
	}

	return nil
}

func cmdMigrate(args *cli.Context) error {
	err := migrate(context.Background(), args.String("tenant"))
	if err != nil {
		return cli.NewExitError(err, 5)
	}
	return nil
}

func migrate(ctx context.Context, tenant string) error {
	c := config.Config
	l := log.NewEmpty()

	switch driver := c.GetString(dconfig.SettingDbDriver); driver {
	case dconfig.DbDriverMongo:
		client, err := mongo.NewMongoClient(ctx, c)
		if err != nil {
			return errors.WithMessage(err, "failed to connect to db")
		}
		defer func() {
			_ = client.Disconnect(ctx)
		}()

		if tenant != "" {
			db := mstore.DbNameForTenant(tenant, mongo.DbName)
			err = mongo.MigrateSingle(ctx, db, mongo.DbVersion, client, true)
		} else {
			err = mongo.Migrate(ctx, mongo.DbVersion, client, true)
		}
		if err != nil {
			return errors.WithMessage(err, "failed to run migrations")
		}

	case dconfig.DbDriverSQLite, dconfig.DbDriverPostgres:
		if tenant != "" {
			l.Infof("%s keeps all tenants in one schema, ignoring tenant %q",
				driver, tenant)
		}
		ds, err := setupSQLStore(ctx, c)
		if err != nil {
			return err
		}
		defer ds.Close()
		if err := ds.Migrate(ctx); err != nil {
			return errors.WithMessage(err, "failed to create schema")
		}

	default:
		return errors.Errorf("unknown database driver %q", driver)
	}

	l.Infof("migrations applied")
	return nil
}

func setupSQLStore(ctx context.Context, c config.Reader) (*sqldb.DataStoreSQL, error) {
	var (
		ds  *sqldb.DataStoreSQL
		err error
	)
	switch c.GetString(dconfig.SettingDbDriver) {
	case dconfig.DbDriverSQLite:
		ds, err = sqldb.OpenSQLite(c.GetString(dconfig.SettingSQLitePath))
	case dconfig.DbDriverPostgres:
		ds, err = sqldb.OpenPostgres(ctx, c.GetString(dconfig.SettingPostgresDSN))
	default:
		err = errors.Errorf("%q is not a SQL driver", c.GetString(dconfig.SettingDbDriver))
	}
	return ds, errors.WithMessage(err, "failed to connect to db")
}
