package bootstrap

import (
	"context"
	"log"

	"myinco-admin-be/internal/config"
	"myinco-admin-be/internal/controller"
	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/pkg/mailer"
	"myinco-admin-be/internal/repository/memory"
	"myinco-admin-be/internal/repository/unitofwork"
	"myinco-admin-be/internal/service"
	"myinco-admin-be/pkg/admin/catalog"
	adminEvents "myinco-admin-be/pkg/admin/events"
	"myinco-admin-be/pkg/admin/policy"
	"myinco-admin-be/pkg/audit"
	"myinco-admin-be/pkg/lock"

	pktNats "myinco-admin-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PolicyController    controller.IPolicyController
	CatalogController   controller.ICatalogController
	SystemLogController controller.ISystemLogController

	Logger logger.ILogger

	// Background workers, started by Start
	auditConsumer *audit.Consumer
	notifications *service.NotificationService
	natsSub       *pktNats.Subscriber

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	c := &Container{Logger: sysLogger}

	// 2. Audit Bus (in-process)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	auditor := audit.NewBusPublisher(pubSub)

	// 3. Infrastructure
	// Redis: per-category lock around policy creation
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Policy locks disabled", err)
			_ = rdb.Close()
		} else {
			locker = lock.NewRedisLocker(rdb, cfg.Policy.LockTTL, cfg.Policy.LockWait)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	} else {
		log.Println("[INFO] REDIS_URL not set, policy locks disabled")
	}

	// 4. Services
	systemLogService := service.NewSystemLogService(uowFactory, auditLogger)
	c.auditConsumer = audit.NewConsumer(pubSub, systemLogService, func(rec *audit.Record, err error) {
		details := map[string]interface{}{"error": err.Error()}
		if rec != nil {
			details["model"] = rec.Model
			details["model_id"] = rec.ModelIdentifier
		}
		sysLogger.Error("AUDIT", "Failed to persist audit record", details)
	})

	c.notifications = service.NewNotificationService(emailService, cfg.Policy.NotifyEmails, cfg.App.BaseURL, sysLogger)

	// NATS: domain events, falling back to in-process delivery
	var eventPublisher adminEvents.Publisher
	natsPub, err := connectNats(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	if natsPub != nil {
		c.closers = append(c.closers, natsPub.Close)
		eventPublisher = adminEvents.NewNatsPublisher(natsPub, sysLogger)

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, func(subject string, err error) {
			sysLogger.Error("NATS", "Event handling failed", map[string]interface{}{"subject": subject, "error": err.Error()})
		})
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.natsSub = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	} else {
		eventPublisher = adminEvents.NewLocalPublisher(sysLogger, c.notifications.HandleEvent)
	}

	policyService := service.NewPolicyService(
		uowFactory,
		sysLogger,
		policy.NewManager(cfg.Policy.HeaderLabel, cfg.Policy.MaxCandidates),
		memory.NewUploadRepository(cfg.Policy.UploadTTL),
		locker,
		auditor,
		eventPublisher,
		cfg.Policy.MaxCandidates,
	)
	catalogService := service.NewCatalogService(uowFactory, sysLogger, catalog.NewManager(), auditor)

	// 5. Controllers
	c.PolicyController = controller.NewPolicyController(policyService)
	c.CatalogController = controller.NewCatalogController(catalogService)
	c.SystemLogController = controller.NewSystemLogController(systemLogService)
	return c
}

// connectNats returns a nil publisher when no URL is configured.
func connectNats(url string, sysLogger logger.ILogger) (*pktNats.Publisher, error) {
	if url == "" {
		sysLogger.Info("NATS", "NATS_URL not set, delivering policy events in process", nil)
		return nil, nil
	}
	pub, err := pktNats.NewPublisher(url)
	if err != nil && pub != nil {
		// The connection is usable; only the stream setup failed.
		sysLogger.Warn("NATS", "Stream setup failed", map[string]interface{}{"error": err.Error()})
		return pub, nil
	}
	return pub, err
}

// Start runs the background workers: the audit consumer and, with NATS, the
// notification subscriber.
func (c *Container) Start(ctx context.Context) error {
	if err := c.auditConsumer.Run(ctx); err != nil {
		return err
	}
	if c.natsSub != nil {
		if err := c.notifications.Start(ctx, c.natsSub); err != nil {
			return err
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
