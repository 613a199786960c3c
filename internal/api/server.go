package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/apocighol/cevicheria-api/docs"
	v1 "github.com/apocighol/cevicheria-api/internal/api/handler/v1"
	"github.com/apocighol/cevicheria-api/internal/api/middleware"
	"github.com/apocighol/cevicheria-api/internal/config"
	"github.com/apocighol/cevicheria-api/internal/repository"
	"github.com/apocighol/cevicheria-api/internal/repository/dao"
	"github.com/apocighol/cevicheria-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	tableHandler := s.initTableHandler(db)
	orderHandler := s.initOrderHandler(db)
	tillHandler := s.initTillHandler(db)
	inventoryHandler := s.initInventoryHandler(db)
	productHandler := s.initProductHandler(db)
	recipeHandler := s.initRecipeHandler(db)
	purchaseHandler := s.initPurchaseHandler(db)
	s.MountHandlers(authHandler, userHandler, tableHandler, orderHandler, tillHandler, inventoryHandler, productHandler, recipeHandler, purchaseHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initTableHandler(db *gorm.DB) *v1.TableHandler {
	tableDAO := dao.NewTableDAO(db)
	repo := repository.NewTableRepository(tableDAO)
	orderRepo := repository.NewOrderRepository(dao.NewOrderDAO(db))
	svc := service.NewTableService(repo, orderRepo)
	handler := v1.NewTableHandler(svc)

	return handler
}

func (s *Server) initOrderHandler(db *gorm.DB) *v1.OrderHandler {
	orderDAO := dao.NewOrderDAO(db)
	repo := repository.NewOrderRepository(orderDAO)
	tableRepo := repository.NewTableRepository(dao.NewTableDAO(db))
	productRepo := repository.NewProductRepository(dao.NewProductDAO(db))
	ingredientRepo := repository.NewIngredientRepository(dao.NewIngredientDAO(db))
	recipeRepo := repository.NewRecipeRepository(dao.NewRecipeDAO(db))
	tillRepo := repository.NewTillRepository(dao.NewTillDAO(db))
	deducter := service.NewRecipeService(recipeRepo, ingredientRepo, productRepo)
	svc := service.NewOrderService(repo, tableRepo, productRepo, deducter, tillRepo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewOrderHandler(svc, uSvc)

	return handler
}

func (s *Server) initTillHandler(db *gorm.DB) *v1.TillHandler {
	tillDAO := dao.NewTillDAO(db)
	repo := repository.NewTillRepository(tillDAO)
	svc := service.NewTillService(repo)
	uSvc := service.NewUserService(repository.NewUserRepository(dao.NewUserDAO(db)))
	handler := v1.NewTillHandler(svc, uSvc)

	return handler
}

func (s *Server) initInventoryHandler(db *gorm.DB) *v1.InventoryHandler {
	ingredientDAO := dao.NewIngredientDAO(db)
	repo := repository.NewIngredientRepository(ingredientDAO)
	recipeRepo := repository.NewRecipeRepository(dao.NewRecipeDAO(db))
	svc := service.NewInventoryService(repo, recipeRepo)
	handler := v1.NewInventoryHandler(svc)

	return handler
}

func (s *Server) initProductHandler(db *gorm.DB) *v1.ProductHandler {
	productDAO := dao.NewProductDAO(db)
	repo := repository.NewProductRepository(productDAO)
	recipeRepo := repository.NewRecipeRepository(dao.NewRecipeDAO(db))
	svc := service.NewProductService(repo, recipeRepo)
	handler := v1.NewProductHandler(svc)

	return handler
}

func (s *Server) initRecipeHandler(db *gorm.DB) *v1.RecipeHandler {
	recipeDAO := dao.NewRecipeDAO(db)
	repo := repository.NewRecipeRepository(recipeDAO)
	ingredientRepo := repository.NewIngredientRepository(dao.NewIngredientDAO(db))
	productRepo := repository.NewProductRepository(dao.NewProductDAO(db))
	svc := service.NewRecipeService(repo, ingredientRepo, productRepo)
	handler := v1.NewRecipeHandler(svc)

	return handler
}

func (s *Server) initPurchaseHandler(db *gorm.DB) *v1.PurchaseHandler {
	purchaseDAO := dao.NewPurchaseDAO(db)
	repo := repository.NewPurchaseRepository(purchaseDAO)
	svc := service.NewPurchaseService(repo)
	handler := v1.NewPurchaseHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	tableHandler *v1.TableHandler,
	orderHandler *v1.OrderHandler,
	tillHandler *v1.TillHandler,
	inventoryHandler *v1.InventoryHandler,
	productHandler *v1.ProductHandler,
	recipeHandler *v1.RecipeHandler,
	purchaseHandler *v1.PurchaseHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authed := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authed.GET("/users/:userID", userHandler.HandleGetUser)

		authed.POST("/tables", tableHandler.HandleCreateTable)
		authed.GET("/tables", tableHandler.HandleListTables)
		authed.GET("/tables/:tableNumber", tableHandler.HandleGetTable)
		authed.POST("/tables/:tableNumber/occupy", tableHandler.HandleOccupyTable)
		authed.POST("/tables/:tableNumber/release", tableHandler.HandleReleaseTable)
		authed.POST("/tables/:tableNumber/reserve", tableHandler.HandleReserveTable)
		authed.PUT("/tables/:tableNumber/total", tableHandler.HandleSetTableTotal)
		authed.POST("/tables/:tableNumber/collect", orderHandler.HandleCollectTable)
		authed.DELETE("/tables/:tableNumber", tableHandler.HandleDeleteTable)

		authed.POST("/orders", orderHandler.HandleCreateOrder)
		authed.GET("/orders", orderHandler.HandleListOrders)
		authed.GET("/orders/:orderID", orderHandler.HandleGetOrder)
		authed.POST("/orders/:orderID/state", orderHandler.HandleChangeOrderState)
		authed.POST("/orders/:orderID/void", orderHandler.HandleVoidOrder)
		authed.POST("/orders/:orderID/discount", orderHandler.HandleApplyDiscount)
		authed.POST("/orders/:orderID/payment", orderHandler.HandleCollectPayment)

		authed.POST("/till/open", tillHandler.HandleOpenSession)
		authed.POST("/till/close", tillHandler.HandleCloseSession)
		authed.POST("/till/expenses", tillHandler.HandleRecordExpense)
		authed.GET("/till/current", tillHandler.HandleCurrentSession)
		authed.GET("/till/sessions", tillHandler.HandleListSessions)
		authed.GET("/till/sessions/:sessionID", tillHandler.HandleGetSession)
		authed.GET("/till/sessions/:sessionID/movements", tillHandler.HandleListMovements)

		authed.POST("/ingredients", inventoryHandler.HandleCreateIngredient)
		authed.GET("/ingredients", inventoryHandler.HandleListIngredients)
		authed.GET("/ingredients/:ingredientID", inventoryHandler.HandleGetIngredient)
		authed.PUT("/ingredients/:ingredientID", inventoryHandler.HandleUpdateIngredient)
		authed.DELETE("/ingredients/:ingredientID", inventoryHandler.HandleDeleteIngredient)
		authed.POST("/ingredients/:ingredientID/stock/increase", inventoryHandler.HandleIncreaseStock)
		authed.POST("/ingredients/:ingredientID/stock/deduct", inventoryHandler.HandleDeductStock)
		authed.POST("/ingredients/:ingredientID/stock/set", inventoryHandler.HandleSetStock)

		authed.POST("/products", productHandler.HandleCreateProduct)
		authed.GET("/products", productHandler.HandleListProducts)
		authed.GET("/products/:productID", productHandler.HandleGetProduct)
		authed.PUT("/products/:productID", productHandler.HandleUpdateProduct)
		authed.DELETE("/products/:productID", productHandler.HandleDeleteProduct)

		authed.PUT("/products/:productID/recipe", recipeHandler.HandleDefineRecipe)
		authed.GET("/products/:productID/recipe", recipeHandler.HandleGetRecipe)
		authed.DELETE("/products/:productID/recipe", recipeHandler.HandleDeleteRecipe)
		authed.POST("/products/:productID/recipe/lines", recipeHandler.HandleUpsertRecipeLine)
		authed.DELETE("/products/:productID/recipe/lines/:ingredientID", recipeHandler.HandleDeleteRecipeLine)
		authed.GET("/products/:productID/availability", recipeHandler.HandleCheckAvailability)

		authed.POST("/purchases", purchaseHandler.HandleRegisterPurchase)
		authed.GET("/purchases", purchaseHandler.HandleListPurchases)
		authed.GET("/purchases/:purchaseID", purchaseHandler.HandleGetPurchase)

		authed.GET("/stats/tables", tableHandler.HandleTableStats)
		authed.GET("/stats/orders", orderHandler.HandleOrderStats)
		authed.GET("/stats/inventory", inventoryHandler.HandleInventoryStats)
		authed.GET("/stats/till", tillHandler.HandleTillStats)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Cevicheria API"
	docs.SwaggerInfo.Description = "Floor, till and inventory coordination for a cevicheria."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
