package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go-pharmapos/internal/cache"
	"go-pharmapos/internal/handler"
	"go-pharmapos/internal/middleware"
	"go-pharmapos/internal/model"
	"go-pharmapos/internal/repository"
	"go-pharmapos/internal/service"
	"go-pharmapos/internal/ws"
	"go-pharmapos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	db.AutoMigrate(
		&model.Product{},
		&model.StockBatch{},
		&model.Order{},
		&model.OrderLine{},
		&model.Discount{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	)

	// 3. Seed defaults: privileges, roles, users, statutory discount
	seedDefaults(db)

	// 4. Stats cache: redis when configured, otherwise a no-op
	statsCache := setupStatsCache()

	// 5. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	discountRepo := repository.NewDiscountRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	invService := service.NewInventoryService(productRepo, batchRepo, wsHub)
	salesService := service.NewSalesService(orderRepo, batchRepo, discountRepo, userRepo, db, wsHub, statsCache)
	dashService := service.NewDashboardService(orderRepo, statsCache)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService)
	salesHandler := handler.NewSalesHandler(salesService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)
	discountHandler := handler.NewDiscountHandler(discountRepo)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "PharmaPOS API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 8. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/sales-movement", middleware.RequirePrivilege("dashboard:view"), dashHandler.GetSalesMovement)

	// Products
	protected.Get("/products", invHandler.GetProducts)
	protected.Post("/products", middleware.RequirePrivilege("product:create"), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege("product:update"), invHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege("product:delete"), invHandler.DeleteProduct)

	// Inventory (stock batches)
	protected.Get("/inventory/stock/:productId", middleware.RequirePrivilege("inventory:view"), invHandler.GetStock)
	protected.Post("/inventory/add", middleware.RequirePrivilege("inventory:create"), invHandler.AddBatch)
	protected.Put("/inventory/:id", middleware.RequirePrivilege("inventory:update"), invHandler.UpdateBatch)
	protected.Delete("/inventory/:id", middleware.RequirePrivilege("inventory:delete"), invHandler.DeleteBatch)

	// Transactions (sales)
	protected.Get("/transactions", middleware.RequirePrivilege("transaction:view"), salesHandler.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege("transaction:view"), salesHandler.GetTransaction)
	protected.Post("/transactions", middleware.RequirePrivilege("transaction:create"), salesHandler.CreateTransaction)
	protected.Delete("/transactions/:id", middleware.RequirePrivilege("transaction:delete"), salesHandler.DeleteTransaction)

	// Discounts
	protected.Get("/discounts", middleware.RequirePrivilege("discount:view"), discountHandler.GetDiscounts)
	protected.Post("/discounts", middleware.RequirePrivilege("discount:create"), discountHandler.CreateDiscount)

	// User Management
	protected.Get("/users", userHandler.GetUsers)
	protected.Get("/users/:id", userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege("user:create"), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege("user:update"), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege("user:delete"), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege("user:update_privilege"), userHandler.UpdateUserPrivileges)

	// Roles
	protected.Get("/roles", roleHandler.GetRoles)

	// Privileges (list all available)
	protected.Get("/privileges", func(c *fiber.Ctx) error {
		privileges, err := privilegeRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"success": false, "message": "Failed to fetch privileges"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "Privileges fetched", "data": privileges})
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func setupStatsCache() cache.StatsCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, dashboard caching disabled")
		return cache.NoopStatsCache{}
	}

	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			redisDB = parsed
		}
	}

	redisCache := cache.NewRedisStatsCache(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Printf("Warning: redis unreachable (%v), dashboard caching disabled", err)
		return cache.NoopStatsCache{}
	}

	log.Println("Redis stats cache connected")
	return redisCache
}

// seedDefaults creates privileges, roles, default users, and the
// statutory Senior Citizen / PWD discount if they don't exist
func seedDefaults(db *gorm.DB) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	discountRepo := repository.NewDiscountRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed privileges: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Seed the statutory discount
	if err := discountRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed discounts: %v", err)
	}

	// 4. Assign privileges to roles
	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets ALL privileges
	masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
	if err == nil && len(masterRole.Privileges) == 0 {
		db.Model(&masterRole).Association("Privileges").Replace(allPrivileges)
		log.Println("MASTER_ADMIN role assigned all privileges")
	}

	// ADMIN gets everything except user management
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Privileges) == 0 {
		adminPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			if p.Code != "user:create" && p.Code != "user:update" && p.Code != "user:delete" && p.Code != "user:update_privilege" {
				adminPrivileges = append(adminPrivileges, p)
			}
		}
		db.Model(&adminRole).Association("Privileges").Replace(adminPrivileges)
		log.Println("ADMIN role assigned limited privileges")
	}

	// CASHIER gets the POS operation subset
	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err == nil && len(cashierRole.Privileges) == 0 {
		cashierPrivileges := []model.Privilege{}
		for _, p := range allPrivileges {
			for _, code := range model.CashierPrivilegeCodes {
				if p.Code == code {
					cashierPrivileges = append(cashierPrivileges, p)
				}
			}
		}
		db.Model(&cashierRole).Association("Privileges").Replace(cashierPrivileges)
		log.Println("CASHIER role assigned POS privileges")
	}

	// 5. Create default admin user with MASTER_ADMIN role
	if _, err := userRepo.FindByEmail("admin@pharmapos.local"); err != nil {
		masterRole, _ := roleRepo.FindByCode(model.RoleMasterAdmin)

		admin := &model.User{
			Email:      "admin@pharmapos.local",
			FullName:   "Master Administrator",
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin@pharmapos.local / admin123 (MASTER_ADMIN)")
		}
	}

	// 6. Create default cashier: the fallback identity for sales whose
	// cashier cannot be resolved
	if _, err := userRepo.FindByEmail("cashier@pharmapos.local"); err != nil {
		cashierRole, roleErr := roleRepo.FindByCode(model.RoleCashier)
		if roleErr != nil {
			log.Printf("Warning: CASHIER role missing, skipping default cashier: %v", roleErr)
			return
		}

		cashier := &model.User{
			Email:      "cashier@pharmapos.local",
			FullName:   "Default Cashier",
			RoleID:     &cashierRole.ID,
			IsActive:   true,
			Privileges: cashierRole.Privileges,
		}
		cashier.CreatedBy = "system"
		cashier.UpdatedBy = "system"

		if err := cashier.SetPassword("cashier123"); err != nil {
			log.Printf("Warning: Failed to hash cashier password: %v", err)
			return
		}

		if err := userRepo.Create(cashier); err != nil {
			log.Printf("Warning: Failed to create default cashier: %v", err)
		} else {
			log.Println("Default cashier created: cashier@pharmapos.local / cashier123 (CASHIER)")
		}
	}
}
