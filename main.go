package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mall-service/internal/config"
	"mall-service/internal/events"
	"mall-service/internal/handlers"
	"mall-service/internal/middleware"
	"mall-service/internal/models"
	"mall-service/internal/redis"
	"mall-service/internal/repository"
	"mall-service/internal/services"
)

func main() {
	cfg := config.LoadConfig()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := autoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	if err := seedDemoData(db); err != nil {
		log.Printf("Warning: Failed to seed demo data: %v", err)
	}

	// Redis is optional; catalog reads fall through to Postgres without it.
	var cache *redis.Client
	cache, err = redis.NewClient(cfg.Redis, logger)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Catalog caching disabled")
		cache = nil
	} else {
		log.Println("Connected to Redis successfully")
	}

	// NATS is optional; an empty URL or a failed connect disables events.
	publisher, err := events.NewPublisher(cfg.NATS.URL, logger)
	if err != nil {
		log.Printf("Warning: Failed to connect to NATS: %v", err)
		log.Println("Event publishing disabled")
		publisher = nil
	} else if publisher != nil {
		log.Println("Connected to NATS successfully")
		defer publisher.Close()
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cartRepo := repository.NewCartRepository(db)
	checkoutRepo := repository.NewCheckoutRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)

	// Services
	passwordSvc := services.NewPasswordService()
	jwtSvc := services.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authSvc := services.NewAuthService(userRepo, passwordSvc, jwtSvc, logger)
	var catalogCache services.CatalogCache
	if cache != nil {
		catalogCache = cache
	}
	catalogSvc := services.NewCatalogService(catalogRepo, userRepo, catalogCache, logger)
	cartSvc := services.NewCartService(cartRepo, catalogRepo, logger)
	checkoutSvc := services.NewCheckoutService(checkoutRepo, publisher, logger)
	promotionSvc := services.NewPromotionService(promotionRepo, publisher, logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authSvc, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc, logger)
	tenantHandler := handlers.NewTenantHandler(catalogSvc, logger)
	checkoutHandler := handlers.NewCheckoutHandler(cartSvc, checkoutSvc, logger)
	promotionHandler := handlers.NewPromotionHandler(promotionSvc, logger)
	adminHandler := handlers.NewAdminHandler(promotionSvc, logger)

	router := setupRouter(cfg, logger, jwtSvc, userRepo,
		healthHandler, authHandler, catalogHandler, tenantHandler,
		checkoutHandler, promotionHandler, adminHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting mall-service on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if cache != nil {
		if err := cache.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	log.Println("Server exited")
}

func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	jwtSvc *services.JWTService,
	userRepo *repository.UserRepository,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	tenantHandler *handlers.TenantHandler,
	checkoutHandler *handlers.CheckoutHandler,
	promotionHandler *handlers.PromotionHandler,
	adminHandler *handlers.AdminHandler,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.Metrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.Origins) == 1 && cfg.CORS.Origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.Origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.RequireAuth(jwtSvc, userRepo), authHandler.Me)
	}

	catalog := api.Group("/catalog")
	{
		catalog.GET("/wings", catalogHandler.ListWings)
		catalog.GET("/stores/:slug", catalogHandler.Storefront)
	}

	tenant := api.Group("/tenant",
		middleware.RequireAuth(jwtSvc, userRepo),
		middleware.RequireRole(models.RoleAdmin, models.RoleTenant, models.RoleStaff),
	)
	{
		stores := tenant.Group("/stores/:storeId")
		stores.GET("/sections",
			middleware.RequireStoreAccess(),
			tenantHandler.ListSections)
		stores.POST("/sections",
			middleware.RequireStoreAccess(models.StaffManager, models.StaffProducts),
			tenantHandler.CreateSection)
		stores.GET("/products",
			middleware.RequireStoreAccess(),
			tenantHandler.ListProducts)
		stores.POST("/products",
			middleware.RequireStoreAccess(models.StaffManager, models.StaffProducts),
			tenantHandler.CreateProduct)
		stores.GET("/variants",
			middleware.RequireStoreAccess(),
			tenantHandler.ListVariants)
		stores.POST("/variants",
			middleware.RequireStoreAccess(models.StaffManager, models.StaffProducts),
			tenantHandler.CreateVariant)
		stores.GET("/staff",
			middleware.RequireStoreAccess(models.StaffManager),
			tenantHandler.ListStaff)
		stores.POST("/staff",
			middleware.RequireStoreAccess(models.StaffManager),
			tenantHandler.AddStaff)
		stores.GET("/orders",
			middleware.RequireStoreAccess(models.StaffManager, models.StaffSales),
			tenantHandler.ListOrders)
	}

	checkout := api.Group("/checkout",
		middleware.RequireAuth(jwtSvc, userRepo),
		middleware.RequireRole(models.RoleCustomer, models.RoleAdmin),
	)
	{
		checkout.POST("/cart/items", checkoutHandler.AddCartItem)
		checkout.GET("/cart", checkoutHandler.ViewCart)
		checkout.POST("/checkout", checkoutHandler.Checkout)
	}

	promotions := api.Group("/promotions",
		middleware.RequireAuth(jwtSvc, userRepo),
		middleware.RequireRole(models.RoleAdmin, models.RoleTenant, models.RoleStaff),
	)
	{
		promoStores := promotions.Group("/stores/:storeId")
		promoStores.GET("/promotions",
			middleware.RequireStoreAccess(),
			promotionHandler.List)
		promoStores.POST("/promotions",
			middleware.RequireStoreAccess(models.StaffManager),
			promotionHandler.Create)
	}

	admin := api.Group("/admin",
		middleware.RequireAuth(jwtSvc, userRepo),
		middleware.RequireRole(models.RoleAdmin),
	)
	{
		admin.GET("/promotions", adminHandler.ListPromotions)
		admin.POST("/promotions/:id/decision", adminHandler.DecidePromotion)
	}

	return router
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Wing{},
		&models.Store{},
		&models.StoreStaff{},
		&models.StoreSection{},
		&models.Product{},
		&models.ProductImage{},
		&models.ProductVariant{},
		&models.VariantAttribute{},
		&models.Inventory{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Promotion{},
	)
}

func seedRoles(db *gorm.DB) error {
	roles := []models.Role{
		{Code: models.RoleAdmin, Name: "Administrator"},
		{Code: models.RoleTenant, Name: "Store Owner"},
		{Code: models.RoleCustomer, Name: "Customer"},
		{Code: models.RoleStaff, Name: "Store Staff"},
	}
	for _, role := range roles {
		var existing models.Role
		err := db.Where("code = ?", role.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedDemoData bootstraps a small demo mall on an empty database: four
// users, three wings, one active store with catalog and an active promotion.
func seedDemoData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		log.Println("Demo data already present, skipping seed")
		return nil
	}
	log.Println("Seeding demo data...")

	passwordSvc := services.NewPasswordService()
	hash, err := passwordSvc.HashPassword("123456")
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		rolesByCode := make(map[models.RoleCode]models.Role)
		var roles []models.Role
		if err := tx.Find(&roles).Error; err != nil {
			return err
		}
		for _, role := range roles {
			rolesByCode[role.Code] = role
		}

		createUser := func(name, email string, code models.RoleCode) (*models.User, error) {
			user := &models.User{Name: name, Email: email, PasswordHash: hash}
			if err := tx.Create(user).Error; err != nil {
				return nil, err
			}
			role := rolesByCode[code]
			if err := tx.Model(user).Association("Roles").Append(&role); err != nil {
				return nil, err
			}
			return user, nil
		}

		admin, err := createUser("Mall Admin", "admin@mall.com", models.RoleAdmin)
		if err != nil {
			return err
		}
		tenant, err := createUser("Demo Tenant", "tenant@mall.com", models.RoleTenant)
		if err != nil {
			return err
		}
		sales, err := createUser("Demo Sales", "sales@mall.com", models.RoleStaff)
		if err != nil {
			return err
		}
		if _, err := createUser("Demo Customer", "customer@mall.com", models.RoleCustomer); err != nil {
			return err
		}

		wings := []models.Wing{
			{Name: "Fashion Wing", Slug: "fashion", SortOrder: 1, Status: true},
			{Name: "Electronics Wing", Slug: "electronics", SortOrder: 2, Status: true},
			{Name: "Furniture Wing", Slug: "furniture", SortOrder: 3, Status: true},
		}
		if err := tx.Create(&wings).Error; err != nil {
			return err
		}

		store := models.Store{
			WingID:      wings[0].ID,
			OwnerUserID: tenant.ID,
			Name:        "Jubi",
			Slug:        "jubi",
			Description: "Demo fashion store",
			Currency:    models.CurrencyYER,
			Status:      models.StoreActive,
		}
		if err := tx.Create(&store).Error; err != nil {
			return err
		}

		staffLink := models.StoreStaff{
			StoreID: store.ID,
			UserID:  sales.ID,
			Role:    models.StaffSales,
			Status:  true,
		}
		if err := tx.Create(&staffLink).Error; err != nil {
			return err
		}

		section := models.StoreSection{
			StoreID:   store.ID,
			Name:      "New Arrivals",
			SortOrder: 1,
			Status:    true,
		}
		if err := tx.Create(&section).Error; err != nil {
			return err
		}

		basePrice, _ := models.ParseMoney("15000")
		product := models.Product{
			StoreID:     store.ID,
			SectionID:   &section.ID,
			Name:        "Classic Thobe",
			Description: "Tailored cotton thobe",
			BasePrice:   basePrice,
			Currency:    models.CurrencyYER,
			Status:      true,
			Images: []models.ProductImage{
				{ImageURL: "https://cdn.mall.example/jubi/thobe.jpg", SortOrder: 1},
			},
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		sku := "THOBE-M-WHT"
		variant := models.ProductVariant{
			ProductID: product.ID,
			SKU:       &sku,
			Status:    true,
			Attributes: []models.VariantAttribute{
				{AttributeName: "size", AttributeValue: "M"},
				{AttributeName: "color", AttributeValue: "white"},
			},
			Inventory: &models.Inventory{StockQty: 5, LowStockThreshold: 3},
		}
		if err := tx.Create(&variant).Error; err != nil {
			return err
		}

		promoValue, _ := models.ParseMoney("10")
		promotion := models.Promotion{
			StoreID:      store.ID,
			Title:        "Grand Opening",
			Type:         models.PromoPercent,
			Value:        promoValue,
			Status:       models.PromoActive,
			CreatedByID:  tenant.ID,
			ApprovedByID: &admin.ID,
			Priority:     10,
		}
		if err := tx.Create(&promotion).Error; err != nil {
			return err
		}

		log.Println("Demo data seeded successfully")
		return nil
	})
}
