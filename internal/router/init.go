package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/config"
	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/internal/container"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/foodgram-api/internal/interface/http"
	"github.com/oksasatya/foodgram-api/internal/router/modules"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

// Deps are the components modules are built from. Optional integrations
// (Redis, RabbitMQ, GCS, Elasticsearch) are nil when not configured.
type Deps struct {
	Store  repository.Store
	Config *config.Config
	Logger *logrus.Logger
	Redis  *redis.Client
	JWT    *helpers.JWTManager
	Jobs   app.JobPublisher
	Images app.ImageStore
	Index  app.RecipeIndex
}

// DepsFromContainer collects the singletons registered at startup.
// Interface fields are only set for non-nil clients.
func DepsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Store:  container.GetStore(),
		Config: cfg,
		Logger: container.GetLogger(),
		Redis:  container.GetRedis(),
		JWT:    container.GetJWT(),
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		d.Jobs = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		d.Images = &helpers.GCSBucket{Client: gcs, Bucket: cfg.GCSBucket}
	}
	if es := container.GetES(); es != nil {
		d.Index = search.NewRecipeIndex(es, cfg.ESRecipesIndex)
	}
	return d
}

type services struct {
	users     *app.UserService
	recipes   *app.RecipeService
	relations *app.RelationService
	catalog   *app.CatalogService
	shopping  *app.ShoppingService
}

func buildServices(d Deps) services {
	users := app.NewUserService(d.Store, d.JWT, d.Redis, d.Logger)
	users.Jobs, users.Index = d.Jobs, d.Index
	users.AppName, users.SiteURL = d.Config.AppName, d.Config.FrontendURL

	recipes := app.NewRecipeService(d.Store, d.Logger)
	recipes.Images, recipes.Index, recipes.Jobs = d.Images, d.Index, d.Jobs
	recipes.AppName, recipes.SiteURL = d.Config.AppName, d.Config.FrontendURL

	shopping := app.NewShoppingService(d.Store, d.Logger)
	shopping.Jobs = d.Jobs
	shopping.AppName, shopping.SiteURL = d.Config.AppName, d.Config.FrontendURL

	return services{
		users:     users,
		recipes:   recipes,
		relations: app.NewRelationService(d.Store, d.Logger),
		catalog:   app.NewCatalogService(d.Store.Catalog, d.Redis, d.Logger),
		shopping:  shopping,
	}
}

// InitModules initializes all application modules and registers them with the router registry.
// This function should be called once during application startup.
func InitModules(r *Registry, d Deps) {
	svc := buildServices(d)
	cfg := d.Config
	cookies := helpers.NewCookieJar(cfg.CookieDomain, cfg.CookieSecure)

	auth := handlers.NewAuthHandler(svc.users, d.Logger, cookies)
	users := handlers.NewUserHandler(svc.users, svc.relations, d.Logger, cookies, cfg.PageSize)
	recipes := handlers.NewRecipeHandler(svc.recipes, svc.relations, d.Logger, cfg.PageSize)
	catalog := handlers.NewCatalogHandler(svc.catalog, d.Logger)
	shopping := handlers.NewShoppingHandler(svc.shopping, d.Logger)

	r.Add(modules.NewAuthModule(auth, d.Redis, d.JWT))
	r.Add(modules.NewUserModule(users, d.Redis, d.JWT))
	r.Add(modules.NewCatalogModule(catalog, d.Redis))
	r.Add(modules.NewRecipeModule(recipes, shopping, d.Redis, d.JWT))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
