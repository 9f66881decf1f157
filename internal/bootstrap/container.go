package bootstrap

import (
	"staticlink-core/internal/config"
	"staticlink-core/internal/constant"
	"staticlink-core/internal/pkg/logger"
	"staticlink-core/internal/query"
	"staticlink-core/internal/repository/unitofwork"
	"staticlink-core/internal/service"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	BundleService service.IBundleService
	LiveView      query.ILiveView
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Services
	publisherService := service.NewPublisherService(constant.BundleChangedTopic, pubSub)
	bundleService := service.NewBundleService(uowFactory, publisherService, sysLogger)

	// 4. Derived Views
	liveView := query.NewLiveView(uowFactory, pubSub, constant.BundleChangedTopic, sysLogger)

	return &Container{
		BundleService: bundleService,
		LiveView:      liveView,
		Logger:        sysLogger,
	}
}
