package main

import (
	"github.com/intranet-lab/backend/internal/repository/migration"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()

	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migration completed")
	return nil
}
