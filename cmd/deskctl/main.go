package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/config"
	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/database"
	"github.com/xavierca1/frontdesk/internal/infra/mail"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "deskctl",
		Usage: "Maintenance tasks for the front desk backend.",
		Commands: []*cli.Command{
			migrateCommand(),
			userCommand(),
			backupCommand(),
			completeBookingsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "deskctl:", err)
		os.Exit(1)
	}
}

// env holds what every command needs: configuration, a logger and an open pool.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, ServiceName: "deskctl"})
	if err != nil {
		return nil, err
	}
	db, err := database.NewDBConnection(c.Context, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}

func (e *env) context(c *cli.Context) context.Context {
	return logger.WithContext(c.Context, e.log)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations.",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			applied, err := database.ApplyMigrations(e.context(c), e.db)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				e.log.Info("database is up to date")
				return nil
			}
			e.log.Info("migrations applied", zap.Strings("files", applied))
			return nil
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage front desk accounts.",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a login for a chiropractor's front desk.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"DESKCTL_PASSWORD"}, Required: true},
					&cli.StringFlag{Name: "chiropractor", Aliases: []string{"c"}, Required: true, Usage: "Partition the account belongs to."},
					&cli.StringFlag{Name: "role", Value: string(entity.RoleStaff), Usage: "admin or staff"},
				},
				Action: func(c *cli.Context) error {
					e, err := setup(c)
					if err != nil {
						return err
					}
					defer e.close()

					users := database.NewUserRepository(e.db)
					audit := usecase.NewAuditTrail(database.NewAuditLogRepository(e.db))
					auth := usecase.NewAuthUseCase(users, nil, audit)

					user, err := auth.CreateUser(e.context(c), c.String("username"), c.String("password"), c.String("chiropractor"), entity.Role(c.String("role")))
					if err != nil {
						return err
					}
					e.log.Info("user created",
						zap.String("user_id", user.ID),
						zap.String("username", user.Username),
						zap.String("role", string(user.Role)),
					)
					return nil
				},
			},
		},
	}
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Export leads, bookings and the audit log.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: usecase.BackupJSON, Usage: "json or csv"},
			&cli.StringFlag{Name: "chiropractor", Usage: "Export a single partition. Empty exports everything."},
			&cli.StringFlag{Name: "out", Value: ".", Usage: "Directory the file is written to."},
			&cli.BoolFlag{Name: "mail", Usage: "Mail the backup to MAIL_BACKUP_TO instead of writing a file."},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			var mailer usecase.BackupMailer
			if e.cfg.MailEnabled() {
				mailer = mail.NewEmailSender(e.cfg.Mail.Host, e.cfg.Mail.Port, e.cfg.Mail.User, e.cfg.Mail.Password, e.cfg.Mail.From, e.cfg.Mail.NotifyTo, e.cfg.Location())
			}
			backup := usecase.NewBackupUseCase(
				database.NewLeadRepository(e.db),
				database.NewBookingRepository(e.db),
				database.NewAuditLogRepository(e.db),
				database.NewMaintenanceRepository(e.db),
				mailer,
			)
			ctx := e.context(c)

			if c.Bool("mail") {
				if mailer == nil || e.cfg.Mail.BackupTo == "" {
					return fmt.Errorf("--mail needs MAIL_HOST and MAIL_BACKUP_TO")
				}
				if err := backup.SendBackup(ctx, e.cfg.Mail.BackupTo); err != nil {
					return err
				}
				e.log.Info("backup mailed", zap.String("to", e.cfg.Mail.BackupTo))
				return nil
			}

			file, err := backup.Export(ctx, c.String("chiropractor"), c.String("format"))
			if err != nil {
				return err
			}
			path := filepath.Join(c.String("out"), file.Filename)
			if err := os.WriteFile(path, file.Data, 0o600); err != nil {
				return fmt.Errorf("write backup: %w", err)
			}
			e.log.Info("backup written", zap.String("path", path), zap.Int("bytes", len(file.Data)))
			return nil
		},
	}
}

func completeBookingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "complete-bookings",
		Usage: "Mark every scheduled booking whose slot has passed as completed.",
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.close()

			bookings := database.NewBookingRepository(e.db)
			leads := database.NewLeadRepository(e.db)
			audit := usecase.NewAuditTrail(database.NewAuditLogRepository(e.db))

			var publisher usecase.CalendarSyncPublisher
			if e.cfg.GoogleEnabled() && e.cfg.RabbitMQ.URL != "" {
				rabbit, err := queue.NewRabbitMQ(e.cfg.RabbitMQ.URL)
				if err != nil {
					return err
				}
				defer rabbit.Close()
				publisher = queue.NewProducer(rabbit.Ch)
			}

			uc := usecase.NewBookingUseCase(bookings, leads, publisher, audit, nil, e.cfg.Location())
			n, err := uc.CompleteDue(e.context(c))
			if err != nil {
				return err
			}
			e.log.Info("bookings completed", zap.Int("count", n))
			return nil
		},
	}
}
