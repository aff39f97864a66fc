package handlers

import (
	"github.com/jmoiron/sqlx"

	"basket/internal/cache"
	"basket/internal/config"
	"basket/internal/repos"
	"basket/internal/services"
	"basket/internal/token"
)

type Deps struct {
	Config          config.Config
	Tokens          *token.Issuer
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	CategoryHandler *CategoryHandler
	OrderHandler    *OrderHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, c cache.Cache) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)
	adminRepo := repos.NewAdminRepo(db)

	tokens := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	authSvc := services.NewAuthService(userRepo, tokens)
	adminSvc := services.NewAdminService(adminRepo, userRepo, tokens)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, c)
	orderSvc := services.NewOrderService(db, prodRepo, orderRepo, userRepo, c)

	return &Deps{
		Config:          cfg,
		Tokens:          tokens,
		AuthHandler:     &AuthHandler{Auth: authSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		OrderHandler:    &OrderHandler{Order: orderSvc},
		AdminHandler:    &AdminHandler{Admins: adminSvc, Catalog: catalogSvc, Orders: orderSvc},
	}
}
