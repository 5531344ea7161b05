//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"microblog/internal/common"
	"microblog/internal/config"
	"microblog/internal/dashboard"
	"microblog/internal/feed"
	"microblog/internal/media"
	"microblog/internal/metrics"
	"microblog/internal/user"
)

func InitializeApplication() (*Application, error) {
	wire.Build(
		config.Load,
		ProvideLogger,
		ProvideDatabaseConnection,
		ProvideRegisterer,
		ProvideDiskStore,
		metrics.New,

		feed.NewFeedRepository,
		wire.Bind(new(feed.SocialGraph), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Tweets), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Likes), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Medias), new(*feed.FeedRepository)),
		wire.Bind(new(feed.Aggregates), new(*feed.FeedRepository)),
		wire.Bind(new(dashboard.StatsSource), new(*feed.FeedRepository)),
		feed.NewFeedService,
		wire.Bind(new(feed.FeedUsecase), new(*feed.FeedService)),
		feed.NewFeedHandlers,

		dashboard.NewService,
		wire.Bind(new(dashboard.Usecase), new(*dashboard.Service)),
		dashboard.NewHandlers,

		user.NewUserRepository,
		wire.Bind(new(user.Users), new(*user.UserRepository)),
		wire.Bind(new(common.UserResolver), new(*user.UserRepository)),
		user.NewUserService,
		wire.Bind(new(user.Usecase), new(*user.UserService)),
		user.NewHandler,
		common.NewAuthMiddleware,

		media.NewMediaRepository,
		wire.Bind(new(media.Medias), new(*media.MediaRepository)),
		media.NewHandler,

		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
